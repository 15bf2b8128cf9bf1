package storage

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const logFileName = "log.jsonl"

// FileStore keeps the log as one JSON record per line in the data directory
type FileStore struct {
	path   string
	mu     sync.Mutex
	nextID int64
	now    func() time.Time
}

// OpenFile opens (creating if needed) the log file in dataDir
func OpenFile(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &FileStore{
		path: filepath.Join(dataDir, logFileName),
		now:  func() time.Time { return time.Now().UTC() },
	}

	records, err := s.readRecords()
	if err != nil {
		return nil, err
	}
	s.nextID = 1
	if n := len(records); n > 0 {
		s.nextID = records[n-1].ID + 1
	}
	return s, nil
}

// Close is a no-op; every append closes the file
func (s *FileStore) Close() error {
	return nil
}

// Append writes one record to the end of the file
func (s *FileStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	rec.Timestamp = s.now()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrStoreUnavailable, err)
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open log: %w", ErrStoreUnavailable, err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: write log: %w", ErrStoreUnavailable, err)
	}
	s.nextID++
	return nil
}

// LatestSubject scans the file for the newest subject record for channel
func (s *FileStore) LatestSubject(ctx context.Context, channel string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords()
	if err != nil {
		return "", false, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Kind == KindSubject && records[i].Channel == channel {
			return records[i].Body, true, nil
		}
	}
	return "", false, nil
}

// Recent returns up to limit of the newest records for channel, oldest first
func (s *FileStore) Recent(ctx context.Context, channel string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords()
	if err != nil {
		return nil, err
	}

	var newest []Record
	for i := len(records) - 1; i >= 0 && len(newest) < limit; i-- {
		if records[i].Channel == channel {
			newest = append(newest, records[i])
		}
	}
	return reverse(newest), nil
}

func (s *FileStore) readRecords() ([]Record, error) {
	lines, err := readLines(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read log: %w", ErrStoreUnavailable, err)
	}

	records := make([]Record, 0, len(lines))
	for n, line := range lines {
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrStoreUnavailable, s.path, n+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
