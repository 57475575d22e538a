package ios

import "github.com/ariata-os/ariata/processor"

// Register installs the iOS stream normalizers.
func Register(p *processor.Processor) {
	p.RegisterNormalizer("ios/healthkit", processor.NormalizerFunc(normalizeHealthKit))
	p.RegisterNormalizer("ios/location", processor.NormalizerFunc(normalizeLocation))
	p.RegisterNormalizer("ios/mic", processor.NormalizerFunc(normalizeMic))
}
