// Package models defines domain entities for the product discovery client.
//
// The package contains two categories of types:
//
// 1. Wire DTOs mirroring the Product Discovery API payloads:
//   - [ResultItem] : a ranked price result for one storefront listing
//   - [ProductCandidate] / [VariantCandidate] : disambiguation choices offered mid-workflow
//   - [ExtractedDetails] : brand/product/variant parsed from a submitted URL
//   - [WorkflowStatus] : the full status payload for a session
//   - [ProgressEvent] : the tagged union carried on the SSE progress stream
//
// 2. Auth DTOs for the session-tracking collaborator endpoints:
//   - [TokenResponse], [UserInfo], [SessionLimit]
//
// All JSON tags follow the backend's snake_case contract.
package models
