/*
Copyright 2025 The jobctl Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics carries the prometheus instrumentation for deployments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for DeploymentsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// DeploymentsTotal counts deployment attempts by outcome.
	DeploymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobctl_deployments_total",
		Help: "Number of deployment attempts, partitioned by outcome.",
	}, []string{"outcome"})

	// CompensationsTotal counts compensating runner pod deletions issued
	// after a dependent creation failed mid-submission.
	CompensationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobctl_compensations_total",
		Help: "Number of compensating runner pod deletions after a failed submission.",
	})
)
