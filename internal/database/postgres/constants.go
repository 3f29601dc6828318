package postgres

// UniqueViolationCode is the PostgreSQL SQLSTATE for unique constraint
// violations
const UniqueViolationCode = "23505"
