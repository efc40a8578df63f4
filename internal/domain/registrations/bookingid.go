package registrations

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/speps/go-hashids/v2"
)

const BookingIDPrefix = "BT"

// BookingIDGenerator produces short, uppercase, non-sequential booking ids
// from the creation time and a random nonce.
type BookingIDGenerator struct {
	h *hashids.HashID
}

func NewBookingIDGenerator(salt string) (*BookingIDGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 10
	hd.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("booking id generator: %w", err)
	}
	return &BookingIDGenerator{h: h}, nil
}

func (g *BookingIDGenerator) Generate(now time.Time) (string, error) {
	nonce := uuid.New()
	enc, err := g.h.EncodeInt64([]int64{now.Unix(), int64(binary.BigEndian.Uint32(nonce[:4]))})
	if err != nil {
		return "", fmt.Errorf("encode booking id: %w", err)
	}
	return BookingIDPrefix + enc, nil
}
