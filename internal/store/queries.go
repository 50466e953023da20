package store

const queryInsertRun = `
INSERT INTO runs (
	id, file, started_at, completed_at, dry_run,
	attempted, inventory_created, offers_created, published,
	validation_errors, aborted, abort_reason
) VALUES (
	@id, @file, @started_at, @completed_at, @dry_run,
	@attempted, @inventory_created, @offers_created, @published,
	@validation_errors, @aborted, @abort_reason
)`

const queryInsertRunItem = `
INSERT INTO run_items (
	run_id, sku, status, failed_phase, reason, offer_id, listing_id
) VALUES (
	@run_id, @sku, @status, @failed_phase, @reason, @offer_id, @listing_id
)`

const queryGetRun = `
SELECT id, file, started_at, completed_at, dry_run,
       attempted, inventory_created, offers_created, published,
       validation_errors, aborted, abort_reason
FROM runs
WHERE id = $1`

const queryListRuns = `
SELECT id, file, started_at, completed_at, dry_run,
       attempted, inventory_created, offers_created, published,
       validation_errors, aborted, abort_reason
FROM runs
ORDER BY started_at DESC
LIMIT $1`

const queryListRunItems = `
SELECT sku, status, failed_phase, reason, offer_id, listing_id
FROM run_items
WHERE run_id = $1
ORDER BY id`

const queryListRunFailures = `
SELECT sku, failed_phase, reason
FROM run_items
WHERE run_id = $1 AND status = 'FAILED'
ORDER BY id`
