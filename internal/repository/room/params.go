package room

type AddMemberParams struct {
	MemberId string `json:"member_id"`
	RoomId   string `json:"room_id"`
}
