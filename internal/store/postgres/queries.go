package postgres

const (
	createMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	selectMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	insertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Menu queries
const (
	menuColumns = `id, name, price::text, description, image_url, status, created_at, updated_at`

	insertMenuItemSQL = `
		INSERT INTO menu_items (id, name, price, description, image_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	getMenuItemSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	getMenuItemsByIDsSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ANY($1::uuid[])`

	listMenuItemsSQL = `
		SELECT ` + menuColumns + ` FROM menu_items
		WHERE ($1 = false OR status = 'enabled')
		ORDER BY created_at DESC`

	updateMenuItemSQL = `
		UPDATE menu_items
		SET name = $2, price = $3, description = $4, image_url = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	updateMenuItemStatusSQL = `
		UPDATE menu_items SET status = $2, updated_at = NOW() WHERE id = $1`

	updateMenuItemByNameSQL = `
		UPDATE menu_items
		SET price = $2, description = $3, image_url = $4, status = $5, updated_at = NOW()
		WHERE id = (SELECT id FROM menu_items WHERE name = $1 ORDER BY created_at LIMIT 1)
		RETURNING ` + menuColumns

	deleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`
)

// Order queries
const (
	orderColumns = `id, token, status, total::text, service_type, table_number, session_id, created_at, updated_at`

	insertOrderSQL = `
		INSERT INTO orders (id, token, status, total, service_type, table_number, session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	getOrderByTokenSQL = `
		SELECT ` + orderColumns + ` FROM orders
		WHERE token = $1
		ORDER BY created_at DESC
		LIMIT 1`

	activeTokenExistsSQL = `
		SELECT EXISTS (SELECT 1 FROM orders WHERE token = $1 AND status IN ('current', 'prepared'))`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at ASC`

	listOrdersBySessionSQL = `
		SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1 ORDER BY created_at ASC`

	updateOrderStatusSQL = `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = (
			SELECT id FROM orders WHERE token = $1 AND status = $2
			ORDER BY created_at DESC LIMIT 1
		)
		RETURNING ` + orderColumns

	insertOrderItemSQL = `
		INSERT INTO order_items (id, order_id, menu_item_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, name, unit_price::text, quantity
		FROM order_items WHERE order_id = ANY($1::uuid[])`
)

// Session and settings queries
const (
	sessionColumns = `id, table_number, status, opened_at, closed_at`

	insertSessionSQL = `
		INSERT INTO table_sessions (id, table_number, status, opened_at)
		VALUES ($1, $2, $3, $4)`

	getSessionSQL = `SELECT ` + sessionColumns + ` FROM table_sessions WHERE id = $1`

	findOpenSessionSQL = `
		SELECT ` + sessionColumns + ` FROM table_sessions WHERE table_number = $1 AND status = 'open'`

	listOpenSessionsSQL = `
		SELECT ` + sessionColumns + ` FROM table_sessions WHERE status = 'open' ORDER BY table_number`

	closeSessionSQL = `
		UPDATE table_sessions SET status = 'closed', closed_at = $2
		WHERE id = $1 AND status = 'open'
		RETURNING ` + sessionColumns

	getSettingsSQL = `SELECT id, total_tables, updated_at FROM restaurant_settings WHERE id = $1`

	upsertSettingsSQL = `
		INSERT INTO restaurant_settings (id, total_tables, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET total_tables = EXCLUDED.total_tables, updated_at = NOW()
		RETURNING updated_at`
)

// Audit and import task queries
const (
	insertAuditSQL = `
		INSERT INTO order_status_audit (id, order_id, token, event_type, old_status, new_status, changed_by, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	listAuditByOrderSQL = `
		SELECT id, order_id, token, event_type, old_status, new_status, changed_by, timestamp
		FROM order_status_audit
		WHERE order_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	insertImportTaskSQL = `
		INSERT INTO menu_import_tasks (id, status, spreadsheet_id, sheet_range, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`

	getImportTaskSQL = `
		SELECT id, status, spreadsheet_id, sheet_range, imported, skipped, error_message, retry_count, created_at, updated_at
		FROM menu_import_tasks WHERE id = $1`

	updateImportTaskStatusSQL = `
		UPDATE menu_import_tasks
		SET status = $2, error_message = CASE WHEN $3 = '' THEN error_message ELSE $3 END, updated_at = NOW()
		WHERE id = $1`

	completeImportTaskSQL = `
		UPDATE menu_import_tasks
		SET status = 'completed', imported = $2, skipped = $3, error_message = '', updated_at = NOW()
		WHERE id = $1`

	incrementImportRetrySQL = `
		UPDATE menu_import_tasks SET retry_count = retry_count + 1, updated_at = NOW() WHERE id = $1`
)
