package pgx

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

const edgeChunkSize = 100

// SaveEdges persists graph edges in chunks. An edge that already exists for
// the same (source, target, type) tuple is left untouched; rebuilding the
// graph over the same components is a no-op.
func (s *ContinuityDBStorage) SaveEdges(ctx context.Context, edges []common.GraphEdge) error {
	if len(edges) == 0 {
		return nil
	}

	logger.Debug("[Store][SaveEdges] Upserting edges", "edges", len(edges))

	return store.ChunkRange(len(edges), edgeChunkSize, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, e := range edges[start:end] {
			var metadata []byte
			if len(e.Metadata) > 0 {
				metadata, err = json.Marshal(e.Metadata)
				if err != nil {
					return err
				}
			}

			s.dbLock.Lock()
			_, err = tx.Exec(ctx, `
				INSERT INTO graph_edges (source_id, target_id, relationship_type, weight, metadata)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (source_id, target_id, relationship_type) DO NOTHING`,
				e.SourceID, e.TargetID, string(e.RelationshipType), common.ClampWeight(e.Weight), metadata,
			)
			s.dbLock.Unlock()
			if err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
}

// GetNeighbors returns the components connected to componentID in either
// direction, strongest edges first, together with the connecting edges. An
// empty relType matches every edge type.
func (s *ContinuityDBStorage) GetNeighbors(ctx context.Context, componentID string, relType common.RelationshipType, limit int) ([]common.MemoryComponent, []common.GraphEdge, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(ctx, `
		SELECT e.source_id, e.target_id, e.relationship_type, e.weight, e.metadata
		FROM graph_edges e
		WHERE (e.source_id = $1 OR e.target_id = $1)
			AND ($2 = '' OR e.relationship_type = $2)
		ORDER BY e.weight DESC
		LIMIT $3`,
		componentID, string(relType), limit,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var edges []common.GraphEdge
	neighborIDs := make([]string, 0)
	for rows.Next() {
		var e common.GraphEdge
		var relationshipType string
		var metadata []byte
		if err := rows.Scan(&e.SourceID, &e.TargetID, &relationshipType, &e.Weight, &metadata); err != nil {
			return nil, nil, err
		}
		e.RelationshipType = common.RelationshipType(relationshipType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, nil, err
			}
		}
		edges = append(edges, e)

		other := e.TargetID
		if other == componentID {
			other = e.SourceID
		}
		neighborIDs = append(neighborIDs, other)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	neighborIDs = store.DedupeStrings(neighborIDs)
	if len(neighborIDs) == 0 {
		return nil, nil, nil
	}

	compRows, err := s.conn.Query(ctx, `
		SELECT `+componentColumns+`
		FROM memory_components
		WHERE public_id = ANY($1)`,
		neighborIDs,
	)
	if err != nil {
		return nil, nil, err
	}
	defer compRows.Close()

	components, err := scanComponents(compRows)
	if err != nil {
		return nil, nil, err
	}
	return components, edges, nil
}

// FindPath returns the component IDs of a shortest undirected path between
// source and target, capped at maxDepth hops, or ErrNotFound when none
// exists within the cap.
func (s *ContinuityDBStorage) FindPath(ctx context.Context, sourceID, targetID string, maxDepth int) ([]string, error) {
	if maxDepth <= 0 {
		maxDepth = 5
	}
	if sourceID == targetID {
		return []string{sourceID}, nil
	}

	var path []string
	err := s.conn.QueryRow(ctx, `
		WITH RECURSIVE links AS (
			SELECT source_id AS a, target_id AS b FROM graph_edges
			UNION
			SELECT target_id, source_id FROM graph_edges
		), walk AS (
			SELECT l.b AS node, ARRAY[l.a, l.b] AS path, 1 AS depth
			FROM links l
			WHERE l.a = $1
			UNION ALL
			SELECT l.b, w.path || l.b, w.depth + 1
			FROM links l JOIN walk w ON l.a = w.node
			WHERE NOT l.b = ANY(w.path) AND w.depth < $3
		)
		SELECT path FROM walk WHERE node = $2 ORDER BY depth LIMIT 1`,
		sourceID, targetID, maxDepth,
	).Scan(&path)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return path, nil
}

// GetAncestorPaths resolves the narrative ancestor chain of each component in
// one recursive query, nearest ancestor first, capped at depth levels.
func (s *ContinuityDBStorage) GetAncestorPaths(ctx context.Context, componentIDs []string, depth int) (map[string][]string, error) {
	componentIDs = store.DedupeStrings(componentIDs)
	if len(componentIDs) == 0 {
		return map[string][]string{}, nil
	}
	if depth <= 0 {
		depth = 9
	}

	rows, err := s.conn.Query(ctx, `
		WITH RECURSIVE ancestry AS (
			SELECT child_id AS origin, parent_id AS ancestor, 1 AS depth
			FROM timeline_links
			WHERE child_id = ANY($1)
			UNION ALL
			SELECT a.origin, t.parent_id, a.depth + 1
			FROM timeline_links t
			JOIN ancestry a ON t.child_id = a.ancestor
			WHERE a.depth < $2
		)
		SELECT origin, ancestor, depth FROM ancestry ORDER BY origin, depth`,
		componentIDs, depth,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string][]string, len(componentIDs))
	for rows.Next() {
		var origin, ancestor string
		var d int
		if err := rows.Scan(&origin, &ancestor, &d); err != nil {
			return nil, err
		}
		paths[origin] = append(paths[origin], ancestor)
	}
	return paths, rows.Err()
}
