// Package extract turns collected hits into raw per-hit payloads and
// aggregate values, and defines the contract of the hit mapper that later
// materializes those payloads into domain objects.
//
// A HitExtractor (projection) declares the collectors it needs, produces one
// raw value per hit while the reader is open, and transforms the raw value
// once the mapper has batch-loaded the referenced documents. An
// AggregationExtractor runs after the hits over every matched document.
//
// Projections and aggregations are plain values: construct them where needed.
package extract
