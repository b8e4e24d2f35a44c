package domain

import "errors"

var (
	// ErrNotFound indicates that a requested account, playlist or track does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates that a username is already taken.
	ErrConflict = errors.New("already exists")
	// ErrDuplicate indicates that a track is already part of a playlist.
	ErrDuplicate = errors.New("track already in playlist")
	// ErrPositionTaken indicates that another track of the playlist holds the position.
	ErrPositionTaken = errors.New("position already taken")
	// ErrUnauthorized indicates bad credentials or a missing identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates an identity acting on a resource it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput indicates a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
