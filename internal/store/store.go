// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store archives converted documents in PostgreSQL. Two tables, created by
// the deployment's migrations: layer_documents holds one row per converted
// page, layers holds the flattened tree keyed by (document_id, idx) with
// idx assigned in pre-order and parent_idx linking each layer to its
// container (NULL at the root).
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const (
	insertDocumentSQL = `
        INSERT INTO layer_documents (id, url, captured_at, generated_at, viewport_width, viewport_height, layer_count)
        VALUES ($1, $2, $3, $4, $5, $6, $7);
    `
	selectDocumentSQL = `
        SELECT url, captured_at, generated_at, viewport_width, viewport_height
        FROM layer_documents
        WHERE id = $1;
    `
	selectLayersSQL = `
        SELECT idx, parent_idx, kind, name, x, y, width, height, horizontal, vertical, detail
        FROM layers
        WHERE document_id = $1
        ORDER BY idx ASC;
    `
)

var layerColumns = []string{
	"document_id", "idx", "parent_idx", "kind", "name",
	"x", "y", "width", "height", "horizontal", "vertical", "detail",
}

// PersistDocument writes the document row and its flattened layers in one
// transaction; a failure at any point leaves nothing behind.
func (s *Store) PersistDocument(ctx context.Context, doc *schemas.LayerDocument) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("document has no layers")
	}

	rows, err := flattenLayers(doc)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after Commit reports ErrTxClosed; anything else is real.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	_, err = tx.Exec(ctx, insertDocumentSQL,
		doc.ID, doc.URL,
		doc.CapturedAt.UTC(), doc.GeneratedAt.UTC(),
		doc.Viewport.Width, doc.Viewport.Height,
		doc.LayerCount(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document row: %w", err)
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"layers"},
		layerColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy layers: %w", err)
	}
	if int(copyCount) != len(rows) {
		return fmt.Errorf("mismatch in copied layer count: expected %d, got %d", len(rows), copyCount)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Debug("document persisted",
		zap.String("id", doc.ID),
		zap.Int("layers", len(rows)))
	return nil
}

// layerDetail carries the per-layer fields that have no column of their
// own. Its keys are LayerNode's JSON tags, so the read path unmarshals it
// straight into the node.
type layerDetail struct {
	Fills             []schemas.Paint        `json:"fills,omitempty"`
	Strokes           []schemas.Paint        `json:"strokes,omitempty"`
	StrokeWeight      float64                `json:"strokeWeight,omitempty"`
	Effects           []schemas.ShadowEffect `json:"effects,omitempty"`
	Opacity           float64                `json:"opacity,omitempty"`
	TopLeftRadius     float64                `json:"topLeftRadius,omitempty"`
	TopRightRadius    float64                `json:"topRightRadius,omitempty"`
	BottomRightRadius float64                `json:"bottomRightRadius,omitempty"`
	BottomLeftRadius  float64                `json:"bottomLeftRadius,omitempty"`
	Characters        string                 `json:"characters,omitempty"`
	Text              *schemas.TextStyle     `json:"textStyle,omitempty"`
	Content           string                 `json:"content,omitempty"`
	Data              map[string]string      `json:"data,omitempty"`
}

// flattenLayers walks the tree pre-order and emits one CopyFrom row per
// layer.
func flattenLayers(doc *schemas.LayerDocument) ([][]interface{}, error) {
	var rows [][]interface{}
	idx := 0

	var walk func(node *schemas.LayerNode, parent interface{}) error
	walk = func(node *schemas.LayerNode, parent interface{}) error {
		nodeIdx := idx
		idx++

		detail, err := json.Marshal(layerDetail{
			Fills:             node.Fills,
			Strokes:           node.Strokes,
			StrokeWeight:      node.StrokeWeight,
			Effects:           node.Effects,
			Opacity:           node.Opacity,
			TopLeftRadius:     node.TopLeftRadius,
			TopRightRadius:    node.TopRightRadius,
			BottomRightRadius: node.BottomRightRadius,
			BottomLeftRadius:  node.BottomLeftRadius,
			Characters:        node.Characters,
			Text:              node.Text,
			Content:           node.Content,
			Data:              node.Data,
		})
		if err != nil {
			return fmt.Errorf("failed to encode layer detail for %q: %w", node.Name, err)
		}

		var horizontal, vertical interface{}
		if node.Constraints != nil {
			horizontal = string(node.Constraints.Horizontal)
			vertical = string(node.Constraints.Vertical)
		}

		rows = append(rows, []interface{}{
			doc.ID, nodeIdx, parent, string(node.Kind), node.Name,
			node.X, node.Y, node.Width, node.Height,
			horizontal, vertical, detail,
		})

		for _, child := range node.Children {
			if err := walk(child, nodeIdx); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(doc.Root, nil); err != nil {
		return nil, err
	}
	return rows, nil
}

// Document loads one archived document and rebuilds its layer tree.
func (s *Store) Document(ctx context.Context, id string) (*schemas.LayerDocument, error) {
	doc := &schemas.LayerDocument{ID: id}

	docRows, err := s.pool.Query(ctx, selectDocumentSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	found := docRows.Next()
	if found {
		err = docRows.Scan(&doc.URL, &doc.CapturedAt, &doc.GeneratedAt,
			&doc.Viewport.Width, &doc.Viewport.Height)
	}
	docRows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to scan document row: %w", err)
	}
	if rowsErr := docRows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error during row iteration: %w", rowsErr)
	}
	if !found {
		return nil, fmt.Errorf("document %s not found", id)
	}

	root, err := s.loadLayers(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Root = root
	return doc, nil
}

func (s *Store) loadLayers(ctx context.Context, documentID string) (*schemas.LayerNode, error) {
	rows, err := s.pool.Query(ctx, selectLayersSQL, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query layers: %w", err)
	}
	defer rows.Close()

	var root *schemas.LayerNode
	nodes := make(map[int]*schemas.LayerNode)
	for rows.Next() {
		var (
			idx        int
			parentIdx  *int
			kind, name string
			x, y, w, h float64
			horizontal *string
			vertical   *string
			detail     []byte
		)
		if err := rows.Scan(&idx, &parentIdx, &kind, &name, &x, &y, &w, &h, &horizontal, &vertical, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan layer row: %w", err)
		}

		node := &schemas.LayerNode{}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, node); err != nil {
				return nil, fmt.Errorf("failed to decode layer detail for row %d: %w", idx, err)
			}
		}
		node.Kind = schemas.LayerKind(kind)
		node.Name = name
		node.X, node.Y, node.Width, node.Height = x, y, w, h
		if horizontal != nil && vertical != nil {
			node.Constraints = &schemas.Constraints{
				Horizontal: schemas.HorizontalConstraint(*horizontal),
				Vertical:   schemas.VerticalConstraint(*vertical),
			}
		}

		if parentIdx == nil {
			root = node
		} else if parent, ok := nodes[*parentIdx]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			return nil, fmt.Errorf("layer row %d references missing parent %d", idx, *parentIdx)
		}
		nodes[idx] = node
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("document %s has no layers", documentID)
	}
	return root, nil
}
