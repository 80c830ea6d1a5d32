// Package cron runs the scheduled cache jobs of the warm worker.
package cron

import "context"

// Job is one scheduled task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry keeps jobs in the order they run.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with jobs; nil entries are skipped.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register appends job.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
