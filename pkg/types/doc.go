// Package types defines the Store and Table interfaces, the pet statistic
// entity types, and the standard error types for petstats.
//
// Stat entities (StatDefinition, StatObservation, DisplayResult) describe one
// bar on a pet's stat sheet. Storage entities (Pet, BreedConfig, Override) are
// persisted through a Store backend and handed to the display engine.
package types
