// Package services holds the sync engine proper.
//
// Scheduler drains the pending-mutation queue and sweeps unsynced
// assessments and analytics events whenever connectivity comes back, one
// pass at a time. Binding is the facade the application uses: it routes
// saves and reads to the right domain facade, queues writes made while
// offline, and exposes connectivity and storage usage.
package services
