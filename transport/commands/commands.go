package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rocketscienceinc/hasami-backend/internal/board"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
	"github.com/rocketscienceinc/hasami-backend/internal/usecase"
)

var errUsage = errors.New("wrong arguments")

type gameManager interface {
	CreateGame(ctx context.Context) string
	OpenSave(ctx context.Context, name string) (string, error)
	DeleteGame(ctx context.Context, id string) error
	MakeMove(ctx context.Context, id string, from, to entity.Position) ([]entity.Position, error)
	ValidMoves(ctx context.Context, id string, from entity.Position) string
	Snapshot(ctx context.Context, id string) (*usecase.Snapshot, error)
	SaveGame(ctx context.Context, id, name string) error
	ListSaves(ctx context.Context) ([]string, error)
	DeleteSave(ctx context.Context, name string) error
}

// Commands - command line front end. Every command works on a named save:
// it is opened, acted on and written back.
type Commands struct {
	logger   *slog.Logger
	manager  gameManager
	out      io.Writer
	serveMCP func(ctx context.Context) error
}

func New(logger *slog.Logger, manager gameManager, out io.Writer, serveMCP func(ctx context.Context) error) *Commands {
	return &Commands{
		logger:   logger.With("component", "commands"),
		manager:  manager,
		out:      out,
		serveMCP: serveMCP,
	}
}

// Run - parses args (args[0] is the program name) and runs the matching command.
func (that *Commands) Run(ctx context.Context, args []string) error {
	return that.root().Run(ctx, args)
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "print the game state as JSON",
	}
}

func (that *Commands) root() *cli.Command {
	return &cli.Command{
		Name:   "hasami",
		Usage:  "Hasami Shogi rules engine",
		Writer: that.out,
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "start a new game in a save",
				ArgsUsage: "<save>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    that.newGame,
			},
			{
				Name:      "move",
				Usage:     "move a piece of the player on turn",
				ArgsUsage: "<save> <from-row> <from-col> <to-row> <to-col>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    that.move,
			},
			{
				Name:      "moves",
				Usage:     "list destinations of a piece",
				ArgsUsage: "<save> <row> <col>",
				Action:    that.moves,
			},
			{
				Name:      "state",
				Usage:     "show a save",
				ArgsUsage: "<save>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    that.state,
			},
			{
				Name:   "list",
				Usage:  "list saves",
				Action: that.list,
			},
			{
				Name:      "delete",
				Usage:     "delete a save",
				ArgsUsage: "<save>",
				Action:    that.deleteSave,
			},
			{
				Name:   "mcp",
				Usage:  "serve the engine as MCP tools over stdio",
				Action: that.mcp,
			},
		},
	}
}

func (that *Commands) newGame(ctx context.Context, cmd *cli.Command) error {
	name, err := saveName(cmd)
	if err != nil {
		return err
	}

	id := that.manager.CreateGame(ctx)
	defer that.release(ctx, id)

	if err = that.manager.SaveGame(ctx, id, name); err != nil {
		return err
	}

	return that.printState(ctx, id, cmd.Bool("json"))
}

func (that *Commands) move(ctx context.Context, cmd *cli.Command) error {
	name, err := saveName(cmd)
	if err != nil {
		return err
	}

	coords, err := intArgs(cmd, 1, 4)
	if err != nil {
		return err
	}

	id, err := that.manager.OpenSave(ctx, name)
	if err != nil {
		return err
	}
	defer that.release(ctx, id)

	from := entity.Position{Row: coords[0], Col: coords[1]}
	to := entity.Position{Row: coords[2], Col: coords[3]}

	captured, err := that.manager.MakeMove(ctx, id, from, to)
	if err != nil {
		return err
	}

	if err = that.manager.SaveGame(ctx, id, name); err != nil {
		return err
	}

	if !cmd.Bool("json") {
		fmt.Fprintf(that.out, "moved %s -> %s\n", from, to)

		if len(captured) > 0 {
			fmt.Fprintf(that.out, "captured %s\n", usecase.FormatMoves(captured))
		}
	}

	return that.printState(ctx, id, cmd.Bool("json"))
}

func (that *Commands) moves(ctx context.Context, cmd *cli.Command) error {
	name, err := saveName(cmd)
	if err != nil {
		return err
	}

	coords, err := intArgs(cmd, 1, 2)
	if err != nil {
		return err
	}

	id, err := that.manager.OpenSave(ctx, name)
	if err != nil {
		return err
	}
	defer that.release(ctx, id)

	fmt.Fprintln(that.out, that.manager.ValidMoves(ctx, id, entity.Position{Row: coords[0], Col: coords[1]}))

	return nil
}

func (that *Commands) state(ctx context.Context, cmd *cli.Command) error {
	name, err := saveName(cmd)
	if err != nil {
		return err
	}

	id, err := that.manager.OpenSave(ctx, name)
	if err != nil {
		return err
	}
	defer that.release(ctx, id)

	return that.printState(ctx, id, cmd.Bool("json"))
}

func (that *Commands) list(ctx context.Context, _ *cli.Command) error {
	names, err := that.manager.ListSaves(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintln(that.out, name)
	}

	return nil
}

func (that *Commands) deleteSave(ctx context.Context, cmd *cli.Command) error {
	name, err := saveName(cmd)
	if err != nil {
		return err
	}

	return that.manager.DeleteSave(ctx, name)
}

func (that *Commands) mcp(ctx context.Context, _ *cli.Command) error {
	if that.serveMCP == nil {
		return fmt.Errorf("%w: mcp is not available", errUsage)
	}

	return that.serveMCP(ctx)
}

// release - handles opened by a command live only as long as the command.
func (that *Commands) release(ctx context.Context, id string) {
	if err := that.manager.DeleteGame(ctx, id); err != nil {
		that.logger.WarnContext(ctx, "failed to release game", "id", id, "error", err)
	}
}

func (that *Commands) printState(ctx context.Context, id string, asJSON bool) error {
	snapshot, err := that.manager.Snapshot(ctx, id)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(that.out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(snapshot)
	}

	return render(that.out, snapshot)
}

// render - the board as a grid, then turn, captures and the result once the game is over.
func render(out io.Writer, snapshot *usecase.Snapshot) error {
	grid := &board.Board{}
	if err := grid.Deserialize(snapshot.Board); err != nil {
		return err
	}

	var sb strings.Builder

	sb.WriteString("  ")
	for col := range board.Size {
		sb.WriteString(" " + strconv.Itoa(col))
	}
	sb.WriteString("\n")

	for row := range board.Size {
		sb.WriteString(strconv.Itoa(row) + " ")

		for col := range board.Size {
			cell := "."
			if color := grid.PieceAt(entity.Position{Row: row, Col: col}); color != entity.None {
				cell = color.Token()
			}

			sb.WriteString(" " + cell)
		}

		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "captured: black %d, white %d\n", snapshot.BlackCaptured, snapshot.WhiteCaptured)

	if snapshot.GameOver {
		fmt.Fprintf(&sb, "game over, %s wins\n", snapshot.Winner)
	} else {
		fmt.Fprintf(&sb, "%s to move\n", snapshot.CurrentPlayer)
	}

	_, err := io.WriteString(out, sb.String())

	return err
}

func saveName(cmd *cli.Command) (string, error) {
	name := cmd.Args().First()
	if name == "" {
		return "", fmt.Errorf("%w: save name is required", errUsage)
	}

	return name, nil
}

// intArgs - count integer arguments starting at position first.
func intArgs(cmd *cli.Command, first, count int) ([]int, error) {
	if cmd.Args().Len() != first+count {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", errUsage, first+count, cmd.Args().Len())
	}

	values := make([]int, 0, count)
	for i := first; i < first+count; i++ {
		value, err := strconv.Atoi(cmd.Args().Get(i))
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", errUsage, i+1, err)
		}

		values = append(values, value)
	}

	return values, nil
}
