package api

import (
	"github.com/lgarnier/fleetwatch/app/database"
	"github.com/lgarnier/fleetwatch/app/metrics"
)

type Handler struct {
	db          *database.DB
	vehicleRepo database.VehicleRepository
	subRepo     database.SubscriptionRepository
	recorder    *metrics.Recorder
	version     string
}

func NewHandler(db *database.DB, vehicleRepo database.VehicleRepository,
	subRepo database.SubscriptionRepository, recorder *metrics.Recorder, version string) *Handler {
	return &Handler{
		db:          db,
		vehicleRepo: vehicleRepo,
		subRepo:     subRepo,
		recorder:    recorder,
		version:     version,
	}
}
