package benchmark

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Vector blob codec errors.
var (
	ErrEmptyVectorBlob = errors.New("empty vector blob")
	ErrInvalidVector   = errors.New("invalid vector blob")
)

// EncodeVector serializes an embedding vector to its storage representation.
// Vectors are stored as CBOR arrays so the blob stays self-describing and
// dimension changes in the embedding model never require a schema migration.
func EncodeVector(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, ErrEmptyVectorBlob
	}
	data, err := cbor.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("encode vector: %w", err)
	}
	return data, nil
}

// DecodeVector materializes a stored blob back into a numeric vector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, ErrEmptyVectorBlob
	}
	var vec []float32
	if err := cbor.Unmarshal(data, &vec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVector, err)
	}
	return vec, nil
}
