package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"railroute/internal/domain"
)

// DefaultTransferLine is the line value that marks a walking connection
// between platforms of the same station.
const DefaultTransferLine = "Interchange"

// DuplicatePolicy decides what happens when two records join the same pair of nodes.
type DuplicatePolicy string

const (
	DuplicateLastWins DuplicatePolicy = "last"
	DuplicateKeepMin  DuplicatePolicy = "min"
	DuplicateReject   DuplicatePolicy = "reject"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateLastWins:
		return DuplicateLastWins, nil
	case DuplicateKeepMin, DuplicateReject:
		return DuplicatePolicy(s), nil
	default:
		return "", fmt.Errorf("unknown duplicate edge policy %q", s)
	}
}

type BuildOptions struct {
	// Strict fails the whole build on the first malformed record.
	Strict     bool
	Duplicates DuplicatePolicy
	// TransferLines lists line values treated as walking transfers.
	// Empty means DefaultTransferLine only.
	TransferLines []string
}

type BuildReport struct {
	Accepted int
	Skipped  []*domain.MalformedRecordError
}

// Build constructs a Network from raw records. Malformed rows are skipped and
// reported unless opts.Strict is set.
func Build(records []domain.Record, opts BuildOptions, logger *slog.Logger) (*Network, BuildReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "graph_builder")

	transfer := make(map[string]struct{})
	if len(opts.TransferLines) == 0 {
		transfer[DefaultTransferLine] = struct{}{}
	}
	for _, l := range opts.TransferLines {
		transfer[l] = struct{}{}
	}

	b := &builder{net: Empty(), policy: opts.Duplicates, transfer: transfer}
	if b.policy == "" {
		b.policy = DuplicateLastWins
	}

	var report BuildReport
	for _, rec := range records {
		conn, err := rec.Parse()
		if err == nil {
			err = b.add(rec.Row, conn)
		}
		if err != nil {
			var malformed *domain.MalformedRecordError
			if !errors.As(err, &malformed) {
				return nil, report, err
			}
			if opts.Strict {
				return nil, report, fmt.Errorf("strict ingest: %w", err)
			}
			logger.Warn("skipping record", "row", malformed.Row, "reason", malformed.Reason)
			report.Skipped = append(report.Skipped, malformed)
			continue
		}
		report.Accepted++
	}

	net := b.net
	net.finalize()
	net.Version = uuid.NewString()
	net.LoadedAt = time.Now()
	net.Skipped = len(report.Skipped)

	logger.Info("network built",
		"stations", net.StationCount(),
		"nodes", net.NodeCount(),
		"edges", net.EdgeCount(),
		"accepted", report.Accepted,
		"skipped", len(report.Skipped),
	)

	return net, report, nil
}

type builder struct {
	net      *Network
	policy   DuplicatePolicy
	transfer map[string]struct{}
}

func (b *builder) add(row int, c domain.Connection) error {
	for _, name := range [2]string{c.StationA, c.StationB} {
		if domain.NormalizeStationName(name) == "" {
			return &domain.MalformedRecordError{Row: row, Reason: fmt.Sprintf("station %q has no display name", name)}
		}
	}

	a := b.node(c.StationA)
	z := b.node(c.StationB)
	_, isTransfer := b.transfer[c.Line]

	edge := Edge{A: a, B: z, Line: c.Line, Weight: c.Minutes, Transfer: isTransfer}
	key := keyFor(a, z)

	if idx, exists := b.net.pairs[key]; exists {
		current := b.net.edges[idx]
		switch b.policy {
		case DuplicateReject:
			return &domain.MalformedRecordError{
				Row:    row,
				Reason: fmt.Sprintf("duplicate connection %s - %s", c.StationA, c.StationB),
			}
		case DuplicateKeepMin:
			if current.Weight <= edge.Weight {
				return nil
			}
		}
		b.net.edges[idx] = edge
		return nil
	}

	idx := int32(len(b.net.edges))
	b.net.edges = append(b.net.edges, edge)
	b.net.pairs[key] = idx
	b.net.adj[a] = append(b.net.adj[a], halfEdge{to: z, edge: idx})
	if a != z {
		b.net.adj[z] = append(b.net.adj[z], halfEdge{to: a, edge: idx})
	}
	return nil
}

func (b *builder) node(name string) NodeID {
	if id, ok := b.net.ids[name]; ok {
		return id
	}

	id := NodeID(len(b.net.names))
	display := domain.NormalizeStationName(name)
	b.net.ids[name] = id
	b.net.names = append(b.net.names, name)
	b.net.display = append(b.net.display, display)
	b.net.adj = append(b.net.adj, nil)
	b.net.aliases[display] = append(b.net.aliases[display], id)
	return id
}
