// Package allowhtml provides a small, allowlist-driven HTML sanitizer
// for untrusted text such as comments and chat messages.
//
// # Overview
//
// allowhtml scans its input in a single pass and never builds a tree.
// Three stages run token by token:
//   - a [Tokenizer] that turns text into start tags, end tags, text runs,
//     comments and malformed fragments, switching into a raw-text mode for
//     elements such as <script> whose bodies are not markup
//   - a filter that consults a [Policy] and keeps, strips or suppresses
//     each token, tracking the stack of open allowed tags
//   - a serializer that writes surviving tags without attributes and
//     HTML-escapes every text run
//
// # Policies
//
// A [Policy] names two disjoint sets of tags:
//   - allowed tags, which survive with every attribute removed
//   - raw-text tags, which are removed together with their entire body
//
// Any other tag is stripped while its text content is kept. [DefaultPolicy]
// allows <b>, <i> and <u> and treats <script> and <style> as raw text.
//
// # Security
//
// The only markup that can appear in the output is an allowed tag written
// as <name> or </name>. Every other <, > and & is entity-escaped, so the
// output can be embedded in an HTML body as is. Sanitize is idempotent.
// Allowed tags left open stay open; [SanitizeBalanced] closes them when
// the result sits next to other markup.
//
// It does NOT provide a Content Security Policy header; pair with
// proper HTTP headers for defence in depth.
//
// # Thread Safety
//
// Sanitize, SanitizeReport, SanitizeBalanced and StripTags keep all state on the stack of
// the call and are safe for concurrent use. A Policy is immutable once
// built.
//
// # Example
//
//	clean := allowhtml.Sanitize(userInput, allowhtml.DefaultPolicy())
package allowhtml
