package id3v23

import (
	"context"
	"fmt"
	"runtime"

	binutil "github.com/simonhull/id3v23/internal/binary"
	"golang.org/x/sync/errgroup"
)

// Locate finds the ID3v2 tag at the start of a media file buffer.
// It returns the tag's offset and total length including the header.
//
// Only the header is checked; Read validates the rest.
//
// Example:
//
//	data, _ := os.ReadFile("song.mp3")
//	if start, n, ok := id3v23.Locate(data); ok {
//		tag, err := id3v23.Read(data[start : start+n])
//	}
func Locate(b []byte) (start, size int, ok bool) {
	if len(b) < tagHeaderSize || string(b[0:3]) != tagMagic {
		return 0, 0, false
	}
	if !binutil.ValidSynchsafe(b[6:10]) {
		return 0, 0, false
	}
	size = tagHeaderSize + int(binutil.DecodeSynchsafe(b[6:10]))
	if size > len(b) {
		return 0, 0, false
	}
	return 0, size, true
}

// ReadMany parses multiple tags concurrently.
//
// Tags are parsed in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input buffers. Every tag
// gets its own Config built from opts.
//
// If any tag fails to parse, the first error is returned.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	tags, err := id3v23.ReadMany(ctx, bufs, id3v23.WithStrict())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, t := range tags {
//		fmt.Println(t.Text("TPE1"), "-", t.Text("TIT2"))
//	}
func ReadMany(ctx context.Context, bufs [][]byte, opts ...Option) ([]*Tag, error) {
	if len(bufs) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU()) // Limit concurrent operations

	results := make([]*Tag, len(bufs))

	for i, b := range bufs {
		g.Go(func() error {
			// Check for cancellation
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			tag, err := Read(b, opts...)
			if err != nil {
				return fmt.Errorf("tag %d: %w", i, err)
			}

			results[i] = tag
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
