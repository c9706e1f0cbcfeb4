package repository

import (
	"database/sql"
	"encoding/json"
	"log"

	"sprachtrainer/internal/database"
	"sprachtrainer/internal/models"
)

// inClauseChunk bounds the number of ? placeholders per IN query.
const inClauseChunk = 500

// LexemeRepository reads the lexeme/inflection knowledge base. The tables
// are owned by the content pipeline; this repository never writes them.
type LexemeRepository struct {
	db *database.DB
}

// NewLexemeRepository creates a new lexeme repository
func NewLexemeRepository(db *database.DB) *LexemeRepository {
	return &LexemeRepository{db: db}
}

// ListLexemes returns up to limit lexemes ordered by id, starting at offset.
// Callers detect an exhaustive fetch by receiving fewer rows than limit.
func (r *LexemeRepository) ListLexemes(limit, offset int) ([]models.Lexeme, error) {
	query := `
		SELECT id, lemma, pos, language, cefr_level, example_de, example_en, metadata, updated_at
		FROM lexemes
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lexemes []models.Lexeme
	for rows.Next() {
		var lex models.Lexeme
		var cefrLevel, exampleDe, exampleEn, metadata sql.NullString

		err := rows.Scan(
			&lex.ID,
			&lex.Lemma,
			&lex.Pos,
			&lex.Language,
			&cefrLevel,
			&exampleDe,
			&exampleEn,
			&metadata,
			&lex.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		lex.CefrLevel = cefrLevel.String
		lex.ExampleDe = exampleDe.String
		lex.ExampleEn = exampleEn.String

		// Malformed metadata must not abort a sync pass; the lexeme simply
		// loses its metadata-driven fields.
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &lex.Metadata); err != nil {
				log.Printf("Warning: lexeme %s has invalid metadata: %v", lex.ID, err)
			}
		}

		lexemes = append(lexemes, lex)
	}

	return lexemes, rows.Err()
}

// GetInflections retrieves all inflection rows for the given lexemes.
func (r *LexemeRepository) GetInflections(lexemeIDs []string) ([]models.Inflection, error) {
	var inflections []models.Inflection

	for start := 0; start < len(lexemeIDs); start += inClauseChunk {
		end := start + inClauseChunk
		if end > len(lexemeIDs) {
			end = len(lexemeIDs)
		}
		chunk := lexemeIDs[start:end]

		query := `
			SELECT id, lexeme_id, form, features, updated_at
			FROM inflections
			WHERE lexeme_id IN (` + database.Placeholders(len(chunk)) + `)
			ORDER BY id ASC
		`

		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := r.db.Query(query, args...)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var infl models.Inflection
			var features sql.NullString

			err := rows.Scan(&infl.ID, &infl.LexemeID, &infl.Form, &features, &infl.UpdatedAt)
			if err != nil {
				rows.Close()
				return nil, err
			}

			fs, err := models.ParseFeatureSet([]byte(features.String))
			if err != nil {
				log.Printf("Warning: inflection %s has invalid features: %v", infl.ID, err)
				fs = models.FeatureSet{}
			}
			infl.Features = fs

			inflections = append(inflections, infl)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return inflections, nil
}

// GetLexemeLevel returns the effective CEFR level for one lexeme, or "".
func (r *LexemeRepository) GetLexemeLevel(lexemeID string) (string, error) {
	query := "SELECT cefr_level, metadata FROM lexemes WHERE id = ?"

	var cefrLevel, metadata sql.NullString
	err := r.db.QueryRow(query, lexemeID).Scan(&cefrLevel, &metadata)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if metadata.Valid && metadata.String != "" {
		var meta models.LexemeMetadata
		if err := json.Unmarshal([]byte(metadata.String), &meta); err == nil && meta.Level != "" {
			return meta.Level, nil
		}
	}
	return cefrLevel.String, nil
}
