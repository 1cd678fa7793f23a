package services

import "errors"

var (
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidTransition     = errors.New("invalid state transition")
	ErrSlotConflict          = errors.New("slot already booked")
	ErrSlotNotFound          = errors.New("slot not found")
	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrCascadeChildImmutable = errors.New("cascade child can only be cancelled through its parent")
	ErrEquipmentNotFound     = errors.New("equipment not found")
	ErrCoachNotFound         = errors.New("coach not found")
	ErrUserNotFound          = errors.New("user not found")
)
