// Package testutil provides testing helpers for the mixin-oauth
// library: a fake of the provider's enveloped API endpoints and small
// fixture utilities shared across package tests.
package testutil
