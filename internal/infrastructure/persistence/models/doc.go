// Package models contains GORM persistence models and their mappings to
// domain entities. Domain aggregates never carry GORM tags; the conversion
// happens here so the schema can evolve without touching domain code.
package models
