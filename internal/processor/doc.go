// Package processor contains the core business logic behind the CLI
// commands. It loads the configuration, scores recordings with the
// Speechace client, classifies the results into feedback, manages practice
// sets and renders reference audio. It serves as the main coordinator
// between all other components.
package processor
