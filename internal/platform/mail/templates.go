// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

type body struct {
	text string
	html string
}

type letter struct {
	Heading string
	Intro   string
	Action  string
	Text    string
	Link    string
}

var (
	verificationTemplate = letter{
		Heading: "Verify your account",
		Intro:   "Verify your account now by clicking the link below",
		Action:  "Verify Now",
		Text:    "Verify your account by opening the link below",
	}

	passwordResetTemplate = letter{
		Heading: "Reset your password",
		Intro:   "A password reset was requested for your account. The link is valid for 15 minutes",
		Action:  "Reset Password",
		Text:    "Reset your password by opening the link below",
	}
)

var htmlLayout = template.Must(template.New("letter").Parse(
	`<h1>{{.Heading}}</h1>
<p>{{.Intro}}</p>
<a href="{{.Link}}">{{.Action}}</a>
`))

func render(content letter, link string) (body, error) {
	content.Link = link

	var buffer bytes.Buffer
	if err := htmlLayout.Execute(&buffer, content); err != nil {
		return body{}, fmt.Errorf("mail_render_failed: %w", err)
	}

	return body{
		text: content.Text + "\n\n" + link + "\n",
		html: buffer.String(),
	}, nil
}
