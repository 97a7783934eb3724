// Package crm pushes captured leads to Salesforce in the background.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/metrics"
	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/store"
	"github.com/brightpath-mortgage/intake-api/pkg/salesforce"
)

const syncBatchLimit = 50

// leadSources maps lead kinds to the Salesforce LeadSource picklist values
// configured in the org.
var leadSources = map[model.LeadKind]string{
	model.LeadKindContact:      "Website Contact Form",
	model.LeadKindScheduleCall: "Website Call Request",
	model.LeadKindRateTracker:  "Website Rate Tracker",
}

// Syncer polls for unsynced leads and pushes them to Salesforce.
type Syncer struct {
	store    store.Store
	client   salesforce.Client
	interval time.Duration
}

// NewSyncer creates a lead syncer polling at the given interval.
func NewSyncer(st store.Store, client salesforce.Client, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Syncer{store: st, client: client, interval: interval}
}

// Run polls until ctx is cancelled. A failed push is retried on the next
// poll because the lead stays unsynced.
func (s *Syncer) Run(ctx context.Context) error {
	log := zap.L().With(zap.Duration("interval", s.interval))
	log.Info("crm sync started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("crm sync stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				log.Warn("crm sync pass failed", zap.Error(err))
			}
		}
	}
}

// SyncOnce pushes one batch of unsynced leads.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	leads, err := s.store.ListLeads(ctx, store.LeadFilter{Unsynced: true, Limit: syncBatchLimit})
	if err != nil {
		return eris.Wrap(err, "crm: list unsynced leads")
	}
	if len(leads) == 0 {
		return nil
	}

	var pushed int
	for _, lead := range leads {
		record, err := LeadRecord(lead)
		if err != nil {
			// A malformed payload will never sync; log and move on.
			zap.L().Error("crm: unusable lead payload",
				zap.String("lead_id", lead.ID), zap.Error(err))
			metrics.CRMSyncTotal.WithLabelValues("invalid").Inc()
			continue
		}

		sfID, err := s.client.InsertOne(ctx, "Lead", record)
		if err != nil {
			metrics.CRMSyncTotal.WithLabelValues("failed").Inc()
			zap.L().Warn("crm: lead push failed",
				zap.String("lead_id", lead.ID), zap.Error(err))
			continue
		}

		if err := s.store.MarkLeadSynced(ctx, lead.ID, time.Now().UTC()); err != nil {
			// The SF record exists but the lead stays unsynced; the next
			// pass will create a duplicate. Surface it loudly.
			zap.L().Error("crm: failed to mark lead synced",
				zap.String("lead_id", lead.ID), zap.String("sf_id", sfID), zap.Error(err))
			continue
		}

		metrics.CRMSyncTotal.WithLabelValues("synced").Inc()
		pushed++
	}

	zap.L().Info("crm sync pass complete",
		zap.Int("pending", len(leads)), zap.Int("pushed", pushed))
	return nil
}

// LeadRecord converts a stored lead into a Salesforce Lead sObject record.
func LeadRecord(lead model.Lead) (map[string]any, error) {
	var fields map[string]string
	if err := json.Unmarshal(lead.Payload, &fields); err != nil {
		return nil, eris.Wrapf(err, "crm: decode lead %s", lead.ID)
	}

	name := fields["name"]
	if name == "" {
		name = fields["fullName"]
	}
	first, last := splitName(name)
	if last == "" {
		return nil, eris.Errorf("crm: lead %s has no usable name", lead.ID)
	}

	record := map[string]any{
		"LastName":   last,
		"Company":    "Self",
		"Email":      fields["email"],
		"Phone":      fields["phone"],
		"LeadSource": leadSources[lead.Kind],
	}
	if first != "" {
		record["FirstName"] = first
	}

	if desc := describeLead(lead.Kind, fields); desc != "" {
		record["Description"] = desc
	}
	return record, nil
}

// describeLead folds the kind-specific form fields into a Description.
func describeLead(kind model.LeadKind, fields map[string]string) string {
	skip := map[string]bool{"name": true, "fullName": true, "email": true, "phone": true}

	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if skip[k] || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Submitted via %s form.\n", kind))
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s: %s\n", k, fields[k]))
	}
	return sb.String()
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
