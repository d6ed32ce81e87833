package journal

import (
	"context"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Repository interface {
		InsertEvents(ctx context.Context, events []model.Event) error
	}
	Metrics interface {
		ObserveRecord(queued bool)
		ObserveFlush(err error, events int, started time.Time)
	}
)
