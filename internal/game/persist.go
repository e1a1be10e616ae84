package game

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/board"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
)

const fieldSeparator = ";"

// MarshalText - single persistence line: <board>;<B|W>;<blackCaptured>;<whiteCaptured>.
func (that *Game) MarshalText() ([]byte, error) {
	line := strings.Join([]string{
		that.board.Serialize(),
		that.currentPlayer.Token(),
		strconv.Itoa(that.blackCaptured),
		strconv.Itoa(that.whiteCaptured),
	}, fieldSeparator)

	return []byte(line), nil
}

// UnmarshalText - replaces the whole state with the parsed line. History is not persisted
// and starts over. On error the game is unchanged.
func (that *Game) UnmarshalText(text []byte) error {
	line := strings.TrimRight(string(text), "\r\n")

	fields := strings.SplitN(line, fieldSeparator, 4)
	if len(fields) < 4 {
		return fmt.Errorf("%w: expected 4 fields separated by %q, got %d", apperror.ErrMalformedData, fieldSeparator, len(fields))
	}

	loaded := board.New()
	if err := loaded.Deserialize(fields[0]); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	player, err := entity.ParseToken(strings.TrimSpace(fields[1]))
	if err != nil || player == entity.None {
		return fmt.Errorf("%w: current player %q", apperror.ErrMalformedData, fields[1])
	}

	blackCaptured, err := parseCount(fields[2])
	if err != nil {
		return fmt.Errorf("black captured: %w", err)
	}

	whiteCaptured, err := parseCount(fields[3])
	if err != nil {
		return fmt.Errorf("white captured: %w", err)
	}

	that.board = loaded
	that.currentPlayer = player
	that.blackCaptured = blackCaptured
	that.whiteCaptured = whiteCaptured
	that.history = []entity.Move{}

	return nil
}

// Save - writes the persistence line. The game itself is not modified.
func (that *Game) Save(writer io.Writer) error {
	line, err := that.MarshalText()
	if err != nil {
		return err
	}

	if _, err = writer.Write(line); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

// Load - reads the first line of reader and replaces the state with it.
func (that *Game) Load(reader io.Reader) error {
	line, err := bufio.NewReader(reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", apperror.ErrIOFailure, err)
	}

	return that.UnmarshalText([]byte(line))
}

func parseCount(field string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperror.ErrMalformedData, err)
	}

	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", apperror.ErrMalformedData, count)
	}

	return count, nil
}
