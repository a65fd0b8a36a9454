package record

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

const readBatchSize = 1024

// WriteParquet drains records into a SNAPPY-compressed Parquet file at path.
// It returns once the channel is closed and the file is complete.
func WriteParquet(path string, records <-chan GameRecord, parallel int64) error {
	if parallel < 1 {
		parallel = 1
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(GameRecord), parallel)
	if err != nil {
		return fmt.Errorf("parquet writer: %w", err)
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for record := range records {
		if err := parquetWriter.Write(record); err != nil {
			// drain the producer
			for range records {
			}
			return fmt.Errorf("writing game %s: %w", record.GameID, err)
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return fmt.Errorf("finishing %s: %w", path, err)
	}
	return fileWriter.Close()
}

// ReadParquet loads every record from a file written by WriteParquet.
func ReadParquet(path string, parallel int64) ([]GameRecord, error) {
	if parallel < 1 {
		parallel = 1
	}

	fileReader, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(GameRecord), parallel)
	if err != nil {
		return nil, fmt.Errorf("parquet reader: %w", err)
	}
	defer parquetReader.ReadStop()

	rows := int(parquetReader.GetNumRows())
	out := make([]GameRecord, 0, rows)
	batchSize := readBatchSize
	for offset := 0; offset < rows; offset += batchSize {
		if remain := rows - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]GameRecord, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, fmt.Errorf("reading rows %d-%d: %w", offset, offset+batchSize, err)
		}
		out = append(out, batch...)
	}
	return out, nil
}
