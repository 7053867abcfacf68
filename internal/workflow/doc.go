// Package workflow coordinates background job processing. A manager runs a
// pool of workers that claim queued jobs from the store and drive them
// through the pipeline. Stopping the manager cancels idle workers and waits
// for in-flight jobs to finish.
package workflow
