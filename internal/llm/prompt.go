// Package llm builds the job posting prompt and pulls the JSON object back
// out of whatever the model replied with.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// SystemInstruction is sent as the system message on every completion.
const SystemInstruction = "You are a helpful assistant that generates structured job posting data in JSON format."

// SlugDateLayout renders dates as DD-MM-YYYY inside slugs.
const SlugDateLayout = "02-01-2006"

// BuildJobPrompt composes the user message for a job posting request.
// template is the structural schema rendering and details the caller's raw
// text, both embedded verbatim.
func BuildJobPrompt(template, details string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("Create a job posting JSON based on the following details. ")
	sb.WriteString("Follow this exact schema without using placeholder data:\n")
	sb.WriteString(template)
	sb.WriteString("\n\nJob Details:\n")
	sb.WriteString(details)
	sb.WriteString("\n\n")
	sb.WriteString("Generate a complete JSON without any placeholder values. ")
	sb.WriteString("Use empty strings where necessary if information is not provided.\n")
	fmt.Fprintf(&sb, "Make sure to generate a unique slug by combining the job title, company name with today's date (%s). ",
		now.Format(SlugDateLayout))
	sb.WriteString("Make sure the slug is URL-friendly: lowercase letters, digits and hyphens only.\n")
	sb.WriteString("Ensure the JSON is valid and well-structured. ")
	sb.WriteString("Make sure the job details are professional as the website is in production.\n")
	sb.WriteString("Do not include any explanations, just return valid JSON. ")
	sb.WriteString("Exclude createdAt and updatedAt fields from the JSON.")

	return sb.String()
}
