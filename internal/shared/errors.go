package shared

import "errors"

// ErrAuditIncomplete occurs when an audit record lacks its identifying fields.
var ErrAuditIncomplete = errors.New("audit log requires action/entity/entity_id")
