// Package slack contains the Slack-facing edges of the service: request
// signature verification, the Events API webhook handler, and the Web API
// client used for chat.postMessage and users.list.
package slack
