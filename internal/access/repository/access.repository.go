package repository

import (
	"database/sql"

	"collabdocs/internal/access/model"
	"collabdocs/pkg/logger"
)

type AccessRepository struct {
	DB *sql.DB
}

func NewAccessRepository(db *sql.DB) *AccessRepository {
	return &AccessRepository{DB: db}
}

func (r *AccessRepository) CreateDocument(doc *model.Document) error {
	_, err := r.DB.Exec(`INSERT INTO documents (id, owner_id, title, is_archived, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		doc.ID, doc.OwnerID, doc.Title, doc.IsArchived, doc.IsPublished, doc.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
	}
	return err
}

// GetDocument returns sql.ErrNoRows when the document does not exist.
func (r *AccessRepository) GetDocument(docID string) (*model.Document, error) {
	var doc model.Document
	err := r.DB.QueryRow(`SELECT id, owner_id, title, is_archived, is_published, created_at, updated_at
		FROM documents WHERE id = $1`, docID).
		Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.IsArchived, &doc.IsPublished, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Sugar.Errorf("Failed to get document %s: %v", docID, err)
		}
		return nil, err
	}
	return &doc, nil
}

func (r *AccessRepository) ListByOwner(ownerID string, archived bool) ([]model.Document, error) {
	rows, err := r.DB.Query(`SELECT id, owner_id, title, is_archived, is_published, created_at, updated_at
		FROM documents WHERE owner_id = $1 AND is_archived = $2 ORDER BY updated_at DESC`, ownerID, archived)
	if err != nil {
		logger.Sugar.Errorf("Failed to list documents for owner %s: %v", ownerID, err)
		return nil, err
	}
	return scanDocuments(rows)
}

func (r *AccessRepository) ListShared(userID string) ([]model.Document, error) {
	rows, err := r.DB.Query(`SELECT d.id, d.owner_id, d.title, d.is_archived, d.is_published, d.created_at, d.updated_at
		FROM documents d JOIN document_access a ON d.id = a.document_id
		WHERE a.user_id = $1 AND d.is_archived = FALSE ORDER BY d.updated_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list shared documents for user %s: %v", userID, err)
		return nil, err
	}
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]model.Document, error) {
	defer rows.Close()
	docs := []model.Document{}
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.IsArchived, &doc.IsPublished, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *AccessRepository) SetArchived(docID string, archived bool) error {
	_, err := r.DB.Exec(`UPDATE documents SET is_archived = $1, updated_at = NOW() WHERE id = $2`, archived, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to set archived=%v for doc %s: %v", archived, docID, err)
	}
	return err
}

func (r *AccessRepository) UpdateTitle(docID, title string) error {
	_, err := r.DB.Exec(`UPDATE documents SET title = $1, updated_at = NOW() WHERE id = $2`, title, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update title for doc %s: %v", docID, err)
	}
	return err
}

func (r *AccessRepository) SetPublished(docID string, published bool) error {
	_, err := r.DB.Exec(`UPDATE documents SET is_published = $1, updated_at = NOW() WHERE id = $2`, published, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to set published=%v for doc %s: %v", published, docID, err)
	}
	return err
}

// DeleteDocument removes the document and every dependent row in one transaction.
func (r *AccessRepository) DeleteDocument(docID string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		logger.Sugar.Errorf("Failed to begin delete tx for doc %s: %v", docID, err)
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM document_access WHERE document_id = $1`,
		`DELETE FROM invitations WHERE document_id = $1`,
		`DELETE FROM access_requests WHERE document_id = $1`,
		`DELETE FROM presence WHERE document_id = $1`,
		`DELETE FROM documents WHERE id = $1`,
	} {
		if _, err := tx.Exec(stmt, docID); err != nil {
			logger.Sugar.Errorf("Failed to delete doc %s: %v", docID, err)
			return err
		}
	}
	return tx.Commit()
}

const insertGrantSQL = `INSERT INTO document_access (id, document_id, user_id, role, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, user_id) DO NOTHING`

// InsertGrant is a check-then-insert: the first write for a (document, user)
// pair wins and later writes are silent no-ops, even with a different role.
func (r *AccessRepository) InsertGrant(grant *model.AccessGrant) error {
	_, err := r.DB.Exec(insertGrantSQL,
		grant.ID, grant.DocumentID, grant.UserID, grant.Role, grant.InvitedBy, grant.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert grant for user %s on doc %s: %v", grant.UserID, grant.DocumentID, err)
	}
	return err
}

// InsertGrantTx inserts a grant inside a caller-owned transaction. Invitation
// acceptance pairs this with the status patch so a crash cannot leave an
// accepted invitation with no grant.
func (r *AccessRepository) InsertGrantTx(tx *sql.Tx, grant *model.AccessGrant) error {
	_, err := tx.Exec(insertGrantSQL,
		grant.ID, grant.DocumentID, grant.UserID, grant.Role, grant.InvitedBy, grant.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert grant for user %s on doc %s: %v", grant.UserID, grant.DocumentID, err)
	}
	return err
}

// GetGrantRole returns sql.ErrNoRows when the user holds no grant.
func (r *AccessRepository) GetGrantRole(docID, userID string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRow(`SELECT role FROM document_access WHERE document_id = $1 AND user_id = $2`, docID, userID).Scan(&role)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get grant role: %v", err)
	}
	return role, err
}

func (r *AccessRepository) ListGrants(docID string) ([]model.AccessGrant, error) {
	rows, err := r.DB.Query(`SELECT id, document_id, user_id, role, invited_by, created_at
		FROM document_access WHERE document_id = $1 ORDER BY created_at ASC`, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list grants for doc %s: %v", docID, err)
		return nil, err
	}
	defer rows.Close()

	grants := []model.AccessGrant{}
	for rows.Next() {
		var g model.AccessGrant
		if err := rows.Scan(&g.ID, &g.DocumentID, &g.UserID, &g.Role, &g.InvitedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *AccessRepository) DeleteGrant(docID, userID string) error {
	_, err := r.DB.Exec(`DELETE FROM document_access WHERE document_id = $1 AND user_id = $2`, docID, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete grant for user %s on doc %s: %v", userID, docID, err)
	}
	return err
}
