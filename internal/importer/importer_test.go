package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/jisho/internal/entities"
)

type fakeHandle struct {
	dictionaries []entities.Dictionary
	terms        []entities.Term
	counts       map[string]int

	putDictionaryErr error
	putTermsErr      error
}

func (f *fakeHandle) PutDictionary(ctx context.Context, dictionary *entities.Dictionary) error {
	if f.putDictionaryErr != nil {
		return f.putDictionaryErr
	}
	f.dictionaries = append(f.dictionaries, *dictionary)
	return nil
}

func (f *fakeHandle) PutTerms(ctx context.Context, terms []entities.Term) error {
	if f.putTermsErr != nil {
		return f.putTermsErr
	}
	f.terms = append(f.terms, terms...)
	return nil
}

func (f *fakeHandle) SetDictionaryTermCount(ctx context.Context, title string, count int) error {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[title] = count
	return nil
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestImportDictionary_HappyPath(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"index.json": `{"title":"JMdict","revision":"jmdict1","format":3,"sequenced":true}`,
		"term_bank_1.json": `[
			["猫","ねこ","n","",10,["cat"],1,""],
			["犬","いぬ","n","",8,["dog"],2,""]
		]`,
		"term_bank_2.json": `[
			["鳥","とり","n","",5,["bird"],3,""]
		]`,
		"tag_bank_1.json": `[]`,
	})

	handle := &fakeHandle{}
	var progress [][2]int
	onProgress := func(total, current int) {
		progress = append(progress, [2]int{total, current})
	}

	result, err := NewImporter().ImportDictionary(context.Background(), handle, archive, Details{}, onProgress)
	require.NoError(t, err)

	assert.True(t, result.Sequenced)
	assert.Equal(t, "JMdict", result.Title)
	assert.Empty(t, result.Errors)

	require.Len(t, handle.dictionaries, 1)
	assert.Equal(t, "JMdict", handle.dictionaries[0].Title)
	assert.Equal(t, 3, handle.dictionaries[0].Format)

	require.Len(t, handle.terms, 3)
	assert.Equal(t, "猫", handle.terms[0].Expression)
	assert.Equal(t, "ねこ", handle.terms[0].Reading)
	assert.Equal(t, `["cat"]`, handle.terms[0].Glossary)
	assert.Equal(t, "鳥", handle.terms[2].Expression) // bank order preserved

	assert.Equal(t, 3, handle.counts["JMdict"])
	assert.Equal(t, [][2]int{{2, 0}, {2, 1}, {2, 2}}, progress)
}

func TestImportDictionary_StructuralErrorsDoNotAbort(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"index.json": `{"title":"Broken","revision":"1","format":3}`,
		"term_bank_1.json": `[
			["良","よい","n","",1,["good"],1,""],
			["","missing expression","n","",1,["bad"],2,""],
			[42,"expression not a string","n","",1,["bad"],3,""],
			["短","",null,""]
		]`,
	})

	handle := &fakeHandle{}
	result, err := NewImporter().ImportDictionary(context.Background(), handle, archive, Details{}, nil)
	require.NoError(t, err)

	assert.Len(t, result.Errors, 3)
	require.Len(t, handle.terms, 1)
	assert.Equal(t, "良", handle.terms[0].Expression)
}

func TestImportDictionary_InvalidArchives(t *testing.T) {
	importer := NewImporter()
	handle := &fakeHandle{}

	_, err := importer.ImportDictionary(context.Background(), handle, []byte("not a zip"), Details{}, nil)
	assert.ErrorIs(t, err, ErrInvalidArchive)

	noIndex := buildArchive(t, map[string]string{"term_bank_1.json": "[]"})
	_, err = importer.ImportDictionary(context.Background(), handle, noIndex, Details{}, nil)
	assert.ErrorIs(t, err, ErrInvalidArchive)

	noTitle := buildArchive(t, map[string]string{"index.json": `{"revision":"1","format":3}`})
	_, err = importer.ImportDictionary(context.Background(), handle, noTitle, Details{}, nil)
	assert.ErrorIs(t, err, ErrInvalidArchive)

	badFormat := buildArchive(t, map[string]string{"index.json": `{"title":"X","format":7}`})
	_, err = importer.ImportDictionary(context.Background(), handle, badFormat, Details{}, nil)
	assert.ErrorIs(t, err, ErrInvalidArchive)

	badBank := buildArchive(t, map[string]string{
		"index.json":       `{"title":"X","format":3}`,
		"term_bank_1.json": `{"not":"an array"}`,
	})
	_, err = importer.ImportDictionary(context.Background(), handle, badBank, Details{}, nil)
	assert.ErrorIs(t, err, ErrInvalidArchive)

	// Nothing was stored by any failed import
	assert.Empty(t, handle.terms)
}

func TestImportDictionary_LegacyVersionKey(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"index.json":       `{"title":"Old","revision":"1","version":1}`,
		"term_bank_1.json": `[["語","ご","n","",1,["word"],1,""]]`,
	})

	handle := &fakeHandle{}
	result, err := NewImporter().ImportDictionary(context.Background(), handle, archive, Details{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Old", result.Title)
	require.Len(t, handle.dictionaries, 1)
	assert.Equal(t, 1, handle.dictionaries[0].Format)
}

func TestImportDictionary_PutDictionaryFailurePropagates(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"index.json":       `{"title":"Dup","format":3}`,
		"term_bank_1.json": `[]`,
	})

	wantErr := errors.New("dictionary with this title already exists")
	handle := &fakeHandle{putDictionaryErr: wantErr}

	_, err := NewImporter().ImportDictionary(context.Background(), handle, archive, Details{}, nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestImportDictionary_PrefixWildcards(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"index.json":       `{"title":"WC","format":3}`,
		"term_bank_1.json": `[["日本語","にほんご","n","",1,["Japanese"],1,""]]`,
	})

	handle := &fakeHandle{}
	_, err := NewImporter().ImportDictionary(context.Background(), handle, archive, Details{PrefixWildcardsSupported: true}, nil)
	require.NoError(t, err)

	require.Len(t, handle.terms, 1)
	assert.Equal(t, "語本日", handle.terms[0].ExpressionReverse)
	assert.Equal(t, "ごんほに", handle.terms[0].ReadingReverse)
}

func TestImportDictionary_BankOrderIsNumeric(t *testing.T) {
	// term_bank_10 must sort after term_bank_2
	archive := buildArchive(t, map[string]string{
		"index.json":        `{"title":"Order","format":3}`,
		"term_bank_10.json": `[["c","","","",1,["c"],3,""]]`,
		"term_bank_2.json":  `[["b","","","",1,["b"],2,""]]`,
		"term_bank_1.json":  `[["a","","","",1,["a"],1,""]]`,
	})

	handle := &fakeHandle{}
	_, err := NewImporter().ImportDictionary(context.Background(), handle, archive, Details{}, nil)
	require.NoError(t, err)

	require.Len(t, handle.terms, 3)
	assert.Equal(t, "a", handle.terms[0].Expression)
	assert.Equal(t, "b", handle.terms[1].Expression)
	assert.Equal(t, "c", handle.terms[2].Expression)
}
