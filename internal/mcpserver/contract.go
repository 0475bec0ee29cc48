package mcpserver

// DocumentFormatContract describes the canonical Markdown document format
// that MCP consumers should follow when creating or updating documents.
const DocumentFormatContract = `# Inkwell Document Format Contract

Every Markdown document stored in Inkwell MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED – shown in listings and feeds
date: 2026-01-15                    # REQUIRED – ISO-8601 date or datetime
category: go                        # REQUIRED – exactly one category
tags:                               # OPTIONAL – YAML list; used for filtering
  - web-frameworks
  - gin
keywords:                           # OPTIONAL – YAML list; search terms
  - rest api
description: One-line summary.      # OPTIONAL – used as the list teaser
draft: true                         # OPTIONAL – hidden from default listings
---

Body text in standard Markdown. The body must not be empty.
` + "```" + `

## Rules

1. **Front matter is mandatory.** The opening delimiter must be the first
   line of the file (no leading blank lines). YAML between ` + "```" + `---` + "```" + ` fences is
   preferred; TOML between ` + "```" + `+++` + "```" + ` fences is also accepted.
2. **` + "`" + `title` + "`" + `, ` + "`" + `date` + "`" + ` and ` + "`" + `category` + "`" + ` are required.** Everything else is optional.
3. **Tags and keywords** are lowercase, kebab-case (e.g. ` + "`" + `task-queues` + "`" + `, ` + "`" + `web-frameworks` + "`" + `).
4. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. Posts live under ` + "`" + `posts/` + "`" + `.
5. **Encoding** is UTF-8 with a trailing newline.
6. **No HTML** unless absolutely necessary; prefer Markdown equivalents.
7. **Unknown front-matter keys are preserved** but mean nothing to Inkwell;
   do not invent keys when a standard one fits.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + ` field ready to paste into the document body.
- Assets are stored in the shared ` + "`" + `attachments/` + "`" + ` directory (flat, no sub-folders).
- Reference in documents using the absolute path: ` + "`" + `![description](/attachments/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./attachments/...` + "`" + ` — always use ` + "`" + `/attachments/filename` + "`" + `.

## Example

` + "```" + `markdown
---
title: Building a REST API with Gin
date: 2026-02-10
category: go
tags:
  - go
  - gin
keywords:
  - rest api
  - web framework
---

Gin is a small, fast HTTP framework for Go. This post walks through
building a JSON API with it.

![Routing diagram](/attachments/gin-routing.png)

## Setting up the router

...
` + "```" + `
`
