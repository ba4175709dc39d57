package frames

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/ipc"
	"github.com/apache/arrow/go/v15/arrow/memory"
	"hermannm.dev/enumnames"
)

// ContentType is the media type of an Arrow IPC stream.
const ContentType = "application/vnd.apache.arrow.stream"

// Compression selects the body compression of an IPC stream.
type Compression uint8

const (
	CompressionNone Compression = iota + 1
	CompressionLZ4
	CompressionZstd
)

var compressionNames = enumnames.NewMap(map[Compression]string{
	CompressionNone: "none",
	CompressionLZ4:  "lz4",
	CompressionZstd: "zstd",
})

func (compression Compression) IsValid() bool {
	return compressionNames.ContainsEnumValue(compression)
}

func (compression Compression) String() string {
	return compressionNames.GetNameOrFallback(compression, "none")
}

func (compression Compression) MarshalJSON() ([]byte, error) {
	return compressionNames.MarshalToNameJSON(compression)
}

func (compression *Compression) UnmarshalJSON(bytes []byte) error {
	return compressionNames.UnmarshalFromNameJSON(bytes, compression)
}

// ParseCompression reads a compression name. The empty string means no compression.
func ParseCompression(name string) (Compression, error) {
	if name == "" {
		return CompressionNone, nil
	}
	quoted, err := json.Marshal(name)
	if err != nil {
		return 0, err
	}
	var compression Compression
	if err := compression.UnmarshalJSON(quoted); err != nil {
		return 0, fmt.Errorf("unknown arrow compression %q", name)
	}
	return compression, nil
}

// WriteIPC writes rec to w as a single-batch Arrow IPC stream.
func WriteIPC(w io.Writer, rec arrow.Record, compression Compression) error {
	opts := []ipc.Option{
		ipc.WithSchema(rec.Schema()),
		ipc.WithAllocator(memory.DefaultAllocator),
	}
	switch compression {
	case CompressionLZ4:
		opts = append(opts, ipc.WithLZ4())
	case CompressionZstd:
		opts = append(opts, ipc.WithZstd())
	}
	writer := ipc.NewWriter(w, opts...)
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return nil
}

// ReadIPC reads every record of an Arrow IPC stream. The caller releases the records.
func ReadIPC(r io.Reader, mem memory.Allocator) ([]arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	reader, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to read arrow payload: %w", err)
	}
	defer reader.Release()

	var records []arrow.Record
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil {
		for _, rec := range records {
			rec.Release()
		}
		return nil, fmt.Errorf("failed to read arrow record: %w", err)
	}
	return records, nil
}
