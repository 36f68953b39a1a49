// Package loader reads transaction logs from CSV files.
//
// Two layouts are supported. The basket layout has one transaction per line
// with comma-separated items. The grouped layout has one item per row
// (member, date, item) and every (member, date) pair forms a transaction.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/agenthands/basket/internal/config"
	"github.com/agenthands/basket/internal/core/builder"
	"github.com/agenthands/basket/internal/core/model"
)

var (
	ErrFileNotFound      = errors.New("transaction file not found")
	ErrUnsupportedFormat = errors.New("unsupported transaction format")
)

// Column names of the grouped layout, matched case-insensitively.
const (
	MemberColumn = "member_number"
	DateColumn   = "date"
	ItemColumn   = "itemdescription"
)

const maxLineSize = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Options struct {
	Format          string
	HasHeader       bool
	MaxTransactions int // 0 means no limit
}

// OptionsFromConfig maps the data section of the config onto loader options.
func OptionsFromConfig(cfg config.DataConfig) Options {
	return Options{
		Format:          cfg.Format,
		HasHeader:       cfg.HasHeader,
		MaxTransactions: cfg.MaxTransactions,
	}
}

// ParseTransactionLine splits a comma-separated line into normalized,
// deduplicated items. Blank lines yield an empty slice.
func ParseTransactionLine(line string) []string {
	return builder.NormalizeTransaction(strings.Split(line, ","))
}

// LoadTransactions reads one file. A missing file returns ErrFileNotFound and
// an empty file returns no transactions.
func LoadTransactions(path string, opts Options) ([]model.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrFileNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}

	txs, err := Parse(bytes.NewReader(decode(data)), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return txs, nil
}

// Parse reads transactions from UTF-8 input.
func Parse(r io.Reader, opts Options) ([]model.Transaction, error) {
	switch opts.Format {
	case "", config.FormatBasket:
		return parseBasket(r, opts)
	case config.FormatGrouped:
		return parseGrouped(r, opts)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", opts.Format)
	}
}

// LoadFiles reads several files concurrently, at most workers at a time, and
// returns their transactions concatenated in path order.
func LoadFiles(ctx context.Context, paths []string, opts Options, workers int) ([]model.Transaction, error) {
	results := make([][]model.Transaction, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			txs, err := LoadTransactions(path, opts)
			if err != nil {
				return err
			}
			results[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Transaction
	for _, txs := range results {
		all = append(all, txs...)
	}
	return capTransactions(all, opts.MaxTransactions), nil
}

// decode strips a UTF-8 byte order mark and falls back to Windows-1252 for
// input that is not valid UTF-8.
func decode(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

func parseBasket(r io.Reader, opts Options) ([]model.Transaction, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	txs := []model.Transaction{}
	first := true
	for scanner.Scan() {
		if first {
			first = false
			if opts.HasHeader {
				continue
			}
		}
		items := ParseTransactionLine(scanner.Text())
		if len(items) == 0 {
			continue
		}
		txs = append(txs, items)
		if opts.MaxTransactions > 0 && len(txs) >= opts.MaxTransactions {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

func parseGrouped(r io.Reader, opts Options) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	member, date, item := 0, 1, 2
	if opts.HasHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return []model.Transaction{}, nil
		}
		if err != nil {
			return nil, err
		}
		member, date, item = columnIndex(header, MemberColumn, 0), columnIndex(header, DateColumn, 1), columnIndex(header, ItemColumn, 2)
	}

	groups := orderedmap.New[string, model.Transaction]()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= max(member, date, item) {
			continue
		}

		name := builder.NormalizeItem(record[item])
		if name == "" {
			continue
		}
		key := strings.TrimSpace(record[member]) + "_" + strings.TrimSpace(record[date])
		tx, _ := groups.Get(key)
		groups.Set(key, append(tx, name))
	}

	txs := make([]model.Transaction, 0, groups.Len())
	for p := groups.Oldest(); p != nil; p = p.Next() {
		txs = append(txs, builder.NormalizeTransaction(p.Value))
	}
	return capTransactions(txs, opts.MaxTransactions), nil
}

func columnIndex(header []string, name string, fallback int) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return fallback
}

func capTransactions(txs []model.Transaction, limit int) []model.Transaction {
	if limit > 0 && len(txs) > limit {
		return txs[:limit]
	}
	if txs == nil {
		return []model.Transaction{}
	}
	return txs
}
