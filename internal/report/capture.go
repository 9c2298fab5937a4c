package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/capscope/internal/inspect"
)

// Capture writes a capture explanation.
func (p Printer) Capture(exp inspect.CaptureExplanation) error {
	if done, err := p.encode(exp); done {
		return err
	}

	fmt.Fprintln(p.Out, p.style(titleStyle, exp.Summary))

	if a := exp.Auth; a != nil {
		p.section("Authentication")
		p.field("type", string(a.Type))
		p.field("detail", a.Description)
		if a.Location != "" {
			loc := string(a.Location)
			if a.HeaderName != "" {
				loc += " (" + a.HeaderName + ")"
			}
			p.field("location", loc)
		}
	}

	if j := exp.JWT; j != nil {
		p.section("JWT")
		if !j.IsValid {
			p.field("status", p.style(badStyle, "could not decode token"))
		} else {
			p.field("algorithm", j.Algorithm)
			if j.Issuer != "" {
				p.field("issuer", j.Issuer)
			}
			if j.Subject != "" {
				p.field("subject", j.Subject)
			}
			if len(j.Audience) > 0 {
				p.field("audience", strings.Join(j.Audience, ", "))
			}
			if j.ExpiresAt != nil {
				when := fmt.Sprintf("%s (%s)", j.ExpiresAt.Format(time.RFC3339), humanize.Time(*j.ExpiresAt))
				if j.IsExpired {
					when = p.style(badStyle, when+" expired")
				}
				p.field("expires", when)
			}
			p.field("claims", strings.Join(j.Claims, ", "))
		}
	}

	if len(exp.Cookies) > 0 {
		p.section("Cookies")
		for _, c := range exp.Cookies {
			var flags []string
			if c.HTTPOnly {
				flags = append(flags, "HttpOnly")
			}
			if c.Secure {
				flags = append(flags, "Secure")
			}
			if c.SameSite != "" {
				flags = append(flags, "SameSite="+c.SameSite)
			}
			fmt.Fprintf(p.Out, "  %-20s %-20s %s\n", c.Name, c.Purpose, p.style(mutedStyle, strings.Join(flags, " ")))
		}
	}

	if c := exp.CORS; c != nil && c.Enabled {
		p.section("CORS")
		p.field("origins", strings.Join(c.AllowedOrigins, ", "))
		if len(c.AllowedMethods) > 0 {
			p.field("methods", strings.Join(c.AllowedMethods, ", "))
		}
		if c.AllowCredentials != nil {
			p.field("credentials", fmt.Sprint(*c.AllowCredentials))
		}
		p.bullets(c.Issues, badStyle, "!")
	}

	if s := exp.Security; s != nil {
		p.section("Security headers")
		p.field("score", p.scoreText(s.Score))
		p.field("https", fmt.Sprint(s.HTTPS))
		p.bullets(s.Issues, warnStyle, "!")
	}

	if len(exp.Recommendations) > 0 {
		p.section("Recommendations")
		p.bullets(exp.Recommendations, warnStyle, "-")
	}
	return nil
}

func (p Printer) scoreText(score int) string {
	text := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 90:
		return p.style(goodStyle, text)
	case score >= 70:
		return p.style(warnStyle, text)
	default:
		return p.style(badStyle, text)
	}
}
