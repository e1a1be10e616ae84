package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rocketscienceinc/hasami-backend/internal/entity"
	"github.com/rocketscienceinc/hasami-backend/internal/usecase"
)

const (
	serverName    = "Hasami Shogi"
	serverVersion = "1.0.0"
)

const instructions = `Hasami Shogi rules engine.

A 9x9 board, black starts on row 0, white on row 8, black moves first.
Pieces slide any distance along a row or column through empty cells.
A move captures every enemy run sandwiched between the moved piece and another piece of the mover.
The side that loses all nine pieces loses the game.

Create a game with create_game and pass the returned game_id to the other tools.
Coordinates are zero based row and col.`

var errMissingArgument = errors.New("missing argument")

type gameManager interface {
	CreateGame(ctx context.Context) string
	DeleteGame(ctx context.Context, id string) error
	NewGame(ctx context.Context, id string) error
	MakeMove(ctx context.Context, id string, from, to entity.Position) ([]entity.Position, error)
	ValidMoves(ctx context.Context, id string, from entity.Position) string
	Snapshot(ctx context.Context, id string) (*usecase.Snapshot, error)
	SaveGame(ctx context.Context, id, name string) error
	LoadGame(ctx context.Context, id, name string) error
	ListSaves(ctx context.Context) ([]string, error)
}

// Server - exposes the game manager as MCP tools over stdio.
type Server struct {
	logger    *slog.Logger
	manager   gameManager
	mcpServer *server.MCPServer
}

func New(logger *slog.Logger, manager gameManager) *Server {
	that := &Server{
		logger:  logger.With("component", "mcp"),
		manager: manager,
	}

	that.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)

	that.registerTools()

	return that
}

// Serve - blocks serving stdin/stdout until the client goes away or the process is signalled.
func (that *Server) Serve(ctx context.Context) error {
	that.logger.InfoContext(ctx, "serving MCP over stdio")

	if err := server.ServeStdio(that.mcpServer); err != nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}

	return nil
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Handle returned by create_game",
	}
}

func coordinateProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     8,
		"description": description,
	}
}

func saveNameProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Save name: letters, digits, dot, dash and underscore",
	}
}

func (that *Server) registerTools() {
	that.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Start a new game and return its game_id",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, that.handleCreateGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_game",
		Description: "Discard a game handle. Saves are kept",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, that.handleDeleteGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Reset a game to the starting position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, that.handleNewGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Slide a piece of the player on turn from one cell to another",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id":  gameIDProperty(),
				"from_row": coordinateProperty("Row of the piece to move"),
				"from_col": coordinateProperty("Column of the piece to move"),
				"to_row":   coordinateProperty("Destination row"),
				"to_col":   coordinateProperty("Destination column"),
			},
			Required: []string{"game_id", "from_row", "from_col", "to_row", "to_col"},
		},
	}, that.handleMakeMove)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "valid_moves",
		Description: "Destinations for the piece at row,col as [r,c;r,c], [] when there are none",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"row":     coordinateProperty("Row of the piece"),
				"col":     coordinateProperty("Column of the piece"),
			},
			Required: []string{"game_id", "row", "col"},
		},
	}, that.handleValidMoves)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Board, player on turn, captures and winner as JSON",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, that.handleGameState)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Store the game under a name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"name":    saveNameProperty(),
			},
			Required: []string{"game_id", "name"},
		},
	}, that.handleSaveGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "load_game",
		Description: "Replace the game with a save. The game is kept if loading fails",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"name":    saveNameProperty(),
			},
			Required: []string{"game_id", "name"},
		},
	}, that.handleLoadGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "list_saves",
		Description: "Names of the stored games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, that.handleListSaves)
}

func (that *Server) handleCreateGame(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := that.manager.CreateGame(ctx)

	return that.stateResult(ctx, id, "game created")
}

func (that *Server) handleDeleteGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	id, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err = that.manager.DeleteGame(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("game deleted: " + id), nil
}

func (that *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	id, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err = that.manager.NewGame(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return that.stateResult(ctx, id, "game reset")
}

func (that *Server) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	id, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	from, err := positionArg(args, "from_row", "from_col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	to, err := positionArg(args, "to_row", "to_col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	captured, err := that.manager.MakeMove(ctx, id, from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	headline := fmt.Sprintf("moved %s -> %s", from, to)
	if len(captured) > 0 {
		headline += ", captured " + usecase.FormatMoves(captured)
	}

	return that.stateResult(ctx, id, headline)
}

func (that *Server) handleValidMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	id, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	from, err := positionArg(args, "row", "col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(that.manager.ValidMoves(ctx, id, from)), nil
}

func (that *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	id, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return that.stateResult(ctx, id, "")
}

func (that *Server) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	id, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name, err := stringArg(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err = that.manager.SaveGame(ctx, id, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("game saved: " + name), nil
}

func (that *Server) handleLoadGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	id, err := stringArg(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name, err := stringArg(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err = that.manager.LoadGame(ctx, id, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return that.stateResult(ctx, id, "game loaded: "+name)
}

func (that *Server) handleListSaves(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := that.manager.ListSaves(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(names) == 0 {
		return mcp.NewToolResultText("no saves"), nil
	}

	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

// stateResult - optional headline followed by the game snapshot as JSON.
func (that *Server) stateResult(ctx context.Context, id, headline string) (*mcp.CallToolResult, error) {
	snapshot, err := that.manager.Snapshot(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		that.logger.ErrorContext(ctx, "failed to encode snapshot", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if headline == "" {
		return mcp.NewToolResultText(string(data)), nil
	}

	return mcp.NewToolResultText(headline + "\n" + string(data)), nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}

	return args
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", errMissingArgument, key)
	}

	return value, nil
}

// intArg - JSON numbers arrive as float64, only whole numbers are accepted.
func intArg(args map[string]interface{}, key string) (int, error) {
	switch value := args[key].(type) {
	case float64:
		if value != float64(int(value)) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}

		return int(value), nil
	case int:
		return value, nil
	default:
		return 0, fmt.Errorf("%w: %s", errMissingArgument, key)
	}
}

func positionArg(args map[string]interface{}, rowKey, colKey string) (entity.Position, error) {
	row, err := intArg(args, rowKey)
	if err != nil {
		return entity.Position{}, err
	}

	col, err := intArg(args, colKey)
	if err != nil {
		return entity.Position{}, err
	}

	return entity.Position{Row: row, Col: col}, nil
}
