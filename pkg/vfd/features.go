package vfd

import "strings"

// Feature is a set of capability flags a driver reports to the host.
//
// Values match the host framework's feature bits.
type Feature uint64

const (
	// FeatAggregateMetadata allows metadata allocations to be aggregated.
	FeatAggregateMetadata Feature = 0x0001

	// FeatAccumulateMetadataWrite allows metadata writes to be accumulated.
	FeatAccumulateMetadataWrite Feature = 0x0002

	// FeatAccumulateMetadataRead allows metadata reads to be accumulated.
	FeatAccumulateMetadataRead Feature = 0x0004

	// FeatAccumulateMetadata is the read and write accumulation pair.
	FeatAccumulateMetadata = FeatAccumulateMetadataWrite | FeatAccumulateMetadataRead

	// FeatDataSieve allows data sieving for raw data reads.
	FeatDataSieve Feature = 0x0008

	// FeatAggregateSmallData allows small raw data allocations to be aggregated.
	FeatAggregateSmallData Feature = 0x0010
)

// DefaultFeatures is the fixed set reported by every object-backed driver.
const DefaultFeatures = FeatAggregateMetadata | FeatAccumulateMetadata | FeatDataSieve | FeatAggregateSmallData

var featureNames = []struct {
	flag Feature
	name string
}{
	{FeatAggregateMetadata, "AGGREGATE_METADATA"},
	{FeatAccumulateMetadataWrite, "ACCUMULATE_METADATA_WRITE"},
	{FeatAccumulateMetadataRead, "ACCUMULATE_METADATA_READ"},
	{FeatDataSieve, "DATA_SIEVE"},
	{FeatAggregateSmallData, "AGGREGATE_SMALLDATA"},
}

// Has reports whether every flag in g is set in f.
func (f Feature) Has(g Feature) bool {
	return f&g == g
}

func (f Feature) String() string {
	if f == 0 {
		return "NONE"
	}

	var names []string
	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}
