package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopost_generation_attempts_total",
		Help: "The total number of model completion attempts",
	}, []string{"provider", "model", "outcome"})

	GenerationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopost_generation_fallbacks_total",
		Help: "The total number of tier fallbacks during generation",
	}, []string{"from_model", "to_model"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autopost_generation_duration_seconds",
		Help:    "Duration of model completion calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "model"})

	PostsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopost_posts_published_total",
		Help: "The total number of published posts",
	}, []string{"status", "job_type"})

	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopost_pipeline_duration_seconds",
		Help:    "Duration in seconds of a full post generation job",
		Buckets: []float64{5, 10, 20, 30, 60, 120, 300, 600},
	})

	ImageComposited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopost_images_composited_total",
		Help: "The total number of image compositing attempts",
	}, []string{"outcome"})

	ContentRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopost_content_rejected_total",
		Help: "The total number of posts rejected by the safety gate",
	}, []string{"reason"})

	SchedulerPostsToday = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopost_scheduler_posts_today",
		Help: "Number of successful posts counted for the current day",
	})
)
