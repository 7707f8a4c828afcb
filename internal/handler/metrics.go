package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kidtales_stories_created_total",
		Help: "Total number of successfully created stories.",
	})

	restylesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kidtales_restyles_total",
			Help: "Total number of restyle attempts by status.",
		},
		[]string{"status"},
	)

	imagesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kidtales_images_generated_total",
		Help: "Total number of standalone images generated.",
	})
)
