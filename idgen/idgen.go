package idgen

import (
	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}

// NewWorker creates a sonyflake worker, falling back to a fixed machine id when
// no private address is available.
func NewWorker() *sonyflake.Sonyflake {
	w := sonyflake.NewSonyflake(sonyflake.Settings{})
	if w == nil {
		w = sonyflake.NewSonyflake(sonyflake.Settings{MachineID: func() (uint16, error) { return 1, nil }})
	}
	return w
}
