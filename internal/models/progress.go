// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

package models

import "math"

// TaskProgress returns the completion value of a task status.
func TaskProgress(status TaskStatus) int {
	switch status {
	case TaskDone:
		return 100
	case TaskInProgress:
		return 50
	default:
		return 0
	}
}

// ComputeProgress returns the rounded average completion of all tasks in
// the modules, or 0 when there are none.
func ComputeProgress(modules []Module) int {
	total, count := 0, 0
	for i := range modules {
		for j := range modules[i].Tasks {
			total += TaskProgress(modules[i].Tasks[j].Status)
			count++
		}
	}
	return RoundedAverage(total, count)
}

// RoundedAverage returns round(total/count), or 0 when count is 0.
func RoundedAverage(total, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}
