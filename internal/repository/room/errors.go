package room

import "errors"

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyInRoom = errors.New("member already in room")
)
