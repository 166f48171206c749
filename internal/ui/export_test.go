package ui

// RenderPublisherListTo exports renderPublisherList for testing.
//
//nolint:gochecknoglobals // Test-only exports
var RenderPublisherListTo = renderPublisherList

// FormatArticleDetail exports formatArticleDetail for testing.
//
//nolint:gochecknoglobals // Test-only exports
var FormatArticleDetail = formatArticleDetail
