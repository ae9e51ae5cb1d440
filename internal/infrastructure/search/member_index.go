// Package search keeps a denormalized copy of the directory in Elasticsearch
// and serves matcher candidate pools from it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/repository"
)

const (
	poolPageSize    = 500
	reindexPageSize = 200
	requestTimeout  = 5 * time.Second
)

type MemberIndex struct {
	ES        *elasticsearch.Client
	IndexName string
	Logger    *logrus.Logger
}

func NewMemberIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *MemberIndex {
	return &MemberIndex{ES: es, IndexName: index, Logger: logger}
}

type memberDoc struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	GivenName   string    `json:"given_name"`
	FamilyName  string    `json:"family_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	Region      string    `json:"region"`
	PostalCode  string    `json:"postal_code"`
	Zip5        string    `json:"zip5"`
	FamilyNotes string    `json:"family_notes"`
	Laxmi       string    `json:"mailing_laxmi"`
	Annakut     string    `json:"mailing_annakut"`
	Calendar    string    `json:"mailing_calendar"`
	BMN         string    `json:"mailing_bmn"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":           map[string]any{"type": "keyword"},
			"zip5":         map[string]any{"type": "keyword"},
			"postal_code":  map[string]any{"type": "keyword"},
			"email":        map[string]any{"type": "keyword"},
			"given_name":   map[string]any{"type": "text"},
			"family_name":  map[string]any{"type": "text"},
			"display_name": map[string]any{"type": "text"},
			"family_notes": map[string]any{"type": "text"},
		},
	},
}

func zip5(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

func toDoc(m entity.Member) memberDoc {
	return memberDoc{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		GivenName:   m.GivenName,
		FamilyName:  m.FamilyName,
		Email:       m.Email,
		Phone:       m.Phone,
		Street:      m.Address.Street,
		City:        m.Address.City,
		Region:      m.Address.Region,
		PostalCode:  m.Address.PostalCode,
		Zip5:        zip5(m.Address.PostalCode),
		FamilyNotes: m.FamilyNotes,
		Laxmi:       string(m.Mailing.Laxmi),
		Annakut:     string(m.Mailing.Annakut),
		Calendar:    string(m.Mailing.Calendar),
		BMN:         string(m.Mailing.BMN),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (d memberDoc) member() entity.Member {
	return entity.Member{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		GivenName:   d.GivenName,
		FamilyName:  d.FamilyName,
		Email:       d.Email,
		Phone:       d.Phone,
		Address: entity.Address{
			Street:     d.Street,
			City:       d.City,
			Region:     d.Region,
			PostalCode: d.PostalCode,
		},
		FamilyNotes: d.FamilyNotes,
		Mailing: entity.Mailing{
			Laxmi:    entity.MailingPreference(d.Laxmi).OrDefault(),
			Annakut:  entity.MailingPreference(d.Annakut).OrDefault(),
			Calendar: entity.MailingPreference(d.Calendar).OrDefault(),
			BMN:      entity.MailingPreference(d.BMN).OrDefault(),
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *MemberIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.IndexName}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	b, _ := json.Marshal(indexMapping)
	res, err = esapi.IndicesCreateRequest{Index: x.IndexName, Body: bytes.NewReader(b)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", x.IndexName, res.Status())
	}
	return nil
}

// Index upserts one record.
func (x *MemberIndex) Index(ctx context.Context, m entity.Member) error {
	b, err := json.Marshal(toDoc(m))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: m.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("member_id", m.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if x.Logger != nil {
			x.Logger.WithField("status", res.Status()).WithField("member_id", m.ID).Warn("es index response error")
		}
		return fmt.Errorf("index member %s: %s", m.ID, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string    `json:"_id"`
			Source memberDoc `json:"_source"`
			Sort   []any     `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// LookupByCriteria returns every indexed record sharing the postal prefix.
// It satisfies the same candidate pool contract as the directory store.
// Pages are chained with search_after on the id sort, so results are not
// capped by the index's max_result_window.
func (x *MemberIndex) LookupByCriteria(ctx context.Context, crit entity.SearchCriteria) ([]entity.Member, error) {
	zip := zip5(crit.PostalCode)
	out := make([]entity.Member, 0)
	if zip == "" {
		return out, nil
	}

	var after []any
	for {
		query := map[string]any{
			"query": map[string]any{
				"term": map[string]any{"zip5": zip},
			},
			"sort": []any{map[string]any{"id": "asc"}},
			"size": poolPageSize,
		}
		if after != nil {
			query["search_after"] = after
		}
		b, _ := json.Marshal(query)

		c, cancel := context.WithTimeout(ctx, requestTimeout)
		res, err := x.ES.Search(
			x.ES.Search.WithContext(c),
			x.ES.Search.WithIndex(x.IndexName),
			x.ES.Search.WithBody(bytes.NewReader(b)),
		)
		if err != nil {
			cancel()
			return nil, err
		}
		var parsed searchResponse
		decErr := func() error {
			defer func() { _ = res.Body.Close() }()
			if res.IsError() {
				return fmt.Errorf("search %s: %s", x.IndexName, res.Status())
			}
			return json.NewDecoder(res.Body).Decode(&parsed)
		}()
		cancel()
		if decErr != nil {
			return nil, decErr
		}

		for _, h := range parsed.Hits.Hits {
			m := h.Source.member()
			if m.ID == "" {
				m.ID = h.ID
			}
			out = append(out, m)
		}
		hits := parsed.Hits.Hits
		if len(hits) < poolPageSize || len(hits[len(hits)-1].Sort) == 0 {
			return out, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

// Count returns how many documents the index holds.
func (x *MemberIndex) Count(ctx context.Context) (int, error) {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Count(x.ES.Count.WithContext(c), x.ES.Count.WithIndex(x.IndexName))
	if err != nil {
		return 0, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return 0, fmt.Errorf("count %s: %s", x.IndexName, res.Status())
	}
	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	return parsed.Count, nil
}

// SyncIfEmpty makes sure the index exists and copies the directory into it
// when it holds no documents. It returns how many records were indexed.
func (x *MemberIndex) SyncIfEmpty(ctx context.Context, repo repository.MemberRepository) (int, error) {
	if err := x.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	n, err := x.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	indexed, err := x.Reindex(ctx, repo)
	if err == nil && x.Logger != nil {
		x.Logger.WithFields(logrus.Fields{"index": x.IndexName, "indexed": indexed}).Info("members index populated from directory store")
	}
	return indexed, err
}

// Reindex copies the whole directory into the index and returns how many
// records were written.
func (x *MemberIndex) Reindex(ctx context.Context, repo repository.MemberRepository) (int, error) {
	if err := x.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	indexed := 0
	for offset := 0; ; offset += reindexPageSize {
		page, total, err := repo.List(ctx, repository.ListOptions{Limit: reindexPageSize, Offset: offset})
		if err != nil {
			return indexed, err
		}
		if len(page) == 0 {
			return indexed, nil
		}
		if err := x.bulk(ctx, page); err != nil {
			return indexed, err
		}
		indexed += len(page)
		if offset+len(page) >= total {
			return indexed, nil
		}
	}
}

func (x *MemberIndex) bulk(ctx context.Context, members []entity.Member) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, m := range members {
		meta := map[string]any{"index": map[string]any{"_index": x.IndexName, "_id": m.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(toDoc(m)); err != nil {
			return err
		}
	}

	c, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.Status())
	}
	var parsed struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	if parsed.Errors {
		return fmt.Errorf("bulk index: some documents were rejected")
	}
	return nil
}
