package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRunDeliversEncodedStream(t *testing.T) {
	source := func(push func(Row) error) error {
		for i := 0; i < 3; i++ {
			if err := push(Row{fmt.Sprintf("row-%d", i)}); err != nil {
				return err
			}
		}
		return nil
	}
	encode := func(rows <-chan Row, w io.Writer) error {
		for row := range rows {
			if _, err := io.WriteString(w, row[0]+"\n"); err != nil {
				return err
			}
		}
		return nil
	}

	stream := Run(source, encode)
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read returned error: %v", err)
	}
	if string(data) != "row-0\nrow-1\nrow-2\n" {
		t.Fatalf("unexpected stream contents: %q", data)
	}
}

func TestRunSourceErrorReachesReader(t *testing.T) {
	boom := errors.New("source exploded")
	source := func(push func(Row) error) error {
		if err := push(Row{"ok"}); err != nil {
			return err
		}
		return boom
	}
	encode := func(rows <-chan Row, w io.Writer) error {
		for row := range rows {
			if _, err := io.WriteString(w, row[0]); err != nil {
				return err
			}
		}
		return nil
	}

	stream := Run(source, encode)
	defer stream.Close()

	_, err := io.ReadAll(stream)
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error on reader, got %v", err)
	}
}

func TestRunEncoderErrorUnblocksSource(t *testing.T) {
	encodeErr := errors.New("encoder exploded")
	pushed := 0
	source := func(push func(Row) error) error {
		for i := 0; i < 10_000; i++ {
			if err := push(Row{strings.Repeat("x", 32)}); err != nil {
				if !errors.Is(err, ErrPipelineClosed) {
					return fmt.Errorf("unexpected push error: %w", err)
				}
				return err
			}
			pushed++
		}
		return nil
	}
	encode := func(rows <-chan Row, w io.Writer) error {
		<-rows
		return encodeErr
	}

	stream := Run(source, encode)
	defer stream.Close()

	_, err := io.ReadAll(stream)
	if !errors.Is(err, encodeErr) {
		t.Fatalf("expected encoder error on reader, got %v", err)
	}
	if pushed >= 10_000 {
		t.Fatalf("expected source to stop early, pushed %d rows", pushed)
	}
}
