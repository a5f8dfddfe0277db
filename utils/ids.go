package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/sony/sonyflake"
)

// IDGenerator produces time ordered IDs. Notifications use them so that
// sorting by ID matches creation order.
type IDGenerator struct {
	sf *sonyflake.Sonyflake
}

func NewIDGenerator(machineID uint16) (*IDGenerator, error) {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) { return machineID, nil },
	})
	if sf == nil {
		return nil, errors.New("sonyflake: invalid settings")
	}
	return &IDGenerator{sf: sf}, nil
}

// Next returns the next ID in base 36.
func (g *IDGenerator) Next() (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(id, 36), nil
}
