package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- connections is JSON, not JSONB: JSONB reorders object keys and
			-- connection order is the delivery order.
			CREATE TABLE notifications (
				id TEXT PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				trigger_id VARCHAR(255) NOT NULL,
				enabled BOOLEAN NOT NULL DEFAULT true,
				connections JSON NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_notifications_trigger_enabled ON notifications(trigger_id, enabled);

			CREATE TABLE settings (
				id SMALLINT PRIMARY KEY CHECK (id = 1),
				data JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);
		`,
		2: `
			CREATE TABLE notification_logs (
				id TEXT PRIMARY KEY,
				notification_id TEXT NOT NULL,
				connection_id TEXT NOT NULL,
				integration VARCHAR(255) NOT NULL,
				trigger_id VARCHAR(255) NOT NULL DEFAULT '',
				status VARCHAR(20) NOT NULL CHECK (status IN ('success', 'failed')),
				error TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_notification_logs_created_at ON notification_logs(created_at);
			CREATE INDEX idx_notification_logs_notification ON notification_logs(notification_id, created_at);
		`,
		3: `
			CREATE TABLE push_subscriptions (
				id TEXT PRIMARY KEY,
				endpoint TEXT NOT NULL UNIQUE,
				p256dh TEXT NOT NULL,
				auth TEXT NOT NULL,
				user_agent TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
	}
}
