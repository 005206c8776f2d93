package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User from user.go
// - Interview and its enums from interview.go
// - SessionRecording, TranscriptEntry, ProcessingStatus, FeedbackReport from session.go

// Database schema overview:
// 1. users - Owner identities (credential issuance is handled by an external service)
// 2. interviews - One row per planned mock interview, lifecycle pending -> active -> completed/cancelled
// 3. session_recordings - At most one per interview; holds the transcript, the
//    three-stage processing status and the generated feedback report as one document
