package mysql

const createSubmissionsSQL = `
CREATE TABLE IF NOT EXISTS booking_submissions (
  id              BIGINT AUTO_INCREMENT PRIMARY KEY,
  visitor_id      VARCHAR(64)  NOT NULL,
  client_id       BIGINT       NULL,
  rooms_requested INT          NOT NULL,
  rooms_booked    INT          NOT NULL,
  outcome         VARCHAR(32)  NOT NULL,
  detail          VARCHAR(512) NULL,
  created_at      DATETIME(3)  NOT NULL,
  KEY idx_submissions_created (created_at),
  KEY idx_submissions_outcome (outcome)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const insertSubmissionSQL = `
INSERT INTO booking_submissions
  (visitor_id, client_id, rooms_requested, rooms_booked, outcome, detail, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// Newest first; id breaks ties inside one millisecond.
const recentSubmissionsSQL = `
SELECT visitor_id, client_id, rooms_requested, rooms_booked, outcome, detail, created_at
FROM booking_submissions
ORDER BY created_at DESC, id DESC
LIMIT ?
`
