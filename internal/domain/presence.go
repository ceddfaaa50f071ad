package domain

// Presence is the per-connection state broadcast to room members.
type Presence struct {
	Id                string  `json:"id"`
	Name              string  `json:"name"`
	Ping              int64   `json:"ping"`
	CurrentlyWatching string  `json:"currentlyWatching"`
	CurrentTime       float64 `json:"currentTime"`
}

// PresencePatch is a partial update of a Presence; nil fields are left unchanged.
type PresencePatch struct {
	Name              *string
	Ping              *int64
	CurrentlyWatching *string
	CurrentTime       *float64
}

func (p *Presence) Apply(patch *PresencePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Ping != nil {
		p.Ping = *patch.Ping
	}
	if patch.CurrentlyWatching != nil {
		p.CurrentlyWatching = *patch.CurrentlyWatching
	}
	if patch.CurrentTime != nil {
		p.CurrentTime = *patch.CurrentTime
	}
}
