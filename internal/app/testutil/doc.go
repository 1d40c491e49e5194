// Package testutil provides test doubles and fixtures shared by the
// transcript packages.
//
//   - MockTranscriber: testify mock of api.Transcriber that also records the
//     audio bytes and request fields it received
//   - FakeExtractor: audio.Extractor that writes a canned audio file or fails
//     with a configured error, and remembers the scratch paths it saw
//   - NewUpload: builds a model.UploadedFile from in-memory bytes
package testutil
