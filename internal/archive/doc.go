// Package archive uploads scan reports to S3-compatible object storage.
//
// Reports are stored as the JSON document written by the report package
// under reports/YYYY/MM/<scan id>.json, optionally below a prefix. The month
// is taken from the scan time in UTC.
package archive
