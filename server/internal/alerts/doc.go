// Package alerts evaluates threshold rules against the summary of every
// processed upload and delivers webhook notifications to Teams, Slack or
// generic HTTP targets when a rule fires or resolves.
//
// An alert is keyed by rule name and upload name, so re-uploading a
// corrected file under the same name resolves the alert raised by the
// previous version.
package alerts
