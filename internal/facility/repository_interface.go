package facility

import (
	"context"
	"time"
)

type Repository interface {
	GetFacility(ctx context.Context, id int) (*Facility, error)
	GetOperatingHours(ctx context.Context, facilityID int, date time.Time) (*OperatingHours, error)
	GetPolicy(ctx context.Context, facilityID int) (Policy, error)
}
