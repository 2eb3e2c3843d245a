// Package domain contains the core business entities for opsync:
// records pulled from external sources, classification results, the
// daily sync guard, and review workflow states. The domain layer has
// no dependencies on adapters or infrastructure.
package domain
