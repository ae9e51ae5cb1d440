package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/oksasatya/member-directory/pkg/helpers"
	"github.com/oksasatya/member-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/member-directory/pkg/mailer/templates"
)

// renderJob fills in recipient data, localizes times and location from the
// requesting IP and renders the job template. Jobs without a template are sent as given.
func renderJob(ctx context.Context, resolver mailtpl.GeoResolver, job *mailer.EmailJob) (subject, text, html string, err error) {
	helpers.EnsureRecipientAndEmail(job)
	subject, text, html = job.Subject, job.Text, job.HTML

	if job.Template == "" {
		if subject == "" {
			subject = helpers.FallbackSubject(*job)
		}
		return subject, text, html, nil
	}

	if resolver != nil {
		helpers.LocalizeTimesIfPossible(ctx, resolver, job.Data)
		if loc, ok := job.Data["Location"]; !ok || fmt.Sprintf("%v", loc) == "" {
			if ip, okIP := job.Data["IP"]; okIP && fmt.Sprintf("%v", ip) != "" {
				if g, gerr := resolver.Lookup(ctx, fmt.Sprintf("%v", ip)); gerr == nil {
					job.Data["Location"] = mailtpl.FormatGeo(g)
				}
			}
		}
	}

	s, t, h, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("render %s: %w", job.Template, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		s = job.Subject
	}
	if s == "" {
		s = helpers.FallbackSubject(*job)
	}
	return s, t, h, nil
}
