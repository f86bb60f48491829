// Package services contains the application services of the fieldsync
// client: the outbox enqueuer and query layer, the sync engine, the fieldwork
// use-cases that write locally and enqueue, and authentication.
package services
