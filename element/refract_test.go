package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstore = `
openapi: 3.1.0
paths:
  /pets/{id}:
    parameters:
      - $ref: '#/components/parameters/id'
    get:
      operationId: getPet
      parameters:
        - name: limit
          in: query
          schema: {type: integer}
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Pet'}
              examples:
                cat: {externalValue: 'cat.json'}
          links:
            self: {operationId: getPet}
        x-extra: {}
components:
  parameters:
    id: {name: id, in: path, required: true}
  schemas:
    Pet:
      type: object
      allOf:
        - {$ref: '#/components/schemas/Base'}
      properties:
        name: {type: string}
        tags:
          type: array
          items: {type: string}
      additionalProperties: false
    Base: true
`

func TestRefract(t *testing.T) {
	root, err := Decode([]byte(petstore), "petstore.yaml")
	require.NoError(t, err)
	Refract(root)

	assert.Equal(t, KindOpenAPI, root.Kind)
	pathItem := root.Get("paths").Get("/pets/{id}")
	assert.Equal(t, KindPathItem, pathItem.Kind)

	ref := pathItem.Get("parameters").Index(0)
	assert.Equal(t, KindReference, ref.Kind)
	expected, _ := ref.MetaString(MetaReferencedElement)
	assert.Equal(t, string(KindParameter), expected)

	op := pathItem.Get("get")
	assert.Equal(t, KindOperation, op.Kind)
	assert.Equal(t, KindParameter, op.Get("parameters").Index(0).Kind)
	assert.Equal(t, KindSchema, op.Get("parameters").Index(0).Get("schema").Kind)

	responses := op.Get("responses")
	assert.Equal(t, KindResponses, responses.Kind)
	assert.Equal(t, KindResponse, responses.Get("200").Kind)
	assert.Equal(t, KindGeneric, responses.Get("x-extra").Kind)

	media := responses.Get("200").Get("content").Get("application/json")
	assert.Equal(t, KindMediaType, media.Kind)
	assert.Equal(t, KindSchema, media.Get("schema").Kind, "schema $ref keeps schema kind")
	assert.Equal(t, KindExample, media.Get("examples").Get("cat").Kind)
	assert.Equal(t, KindLink, responses.Get("200").Get("links").Get("self").Kind)

	schemas := root.Get("components").Get("schemas")
	pet := schemas.Get("Pet")
	assert.Equal(t, KindSchema, pet.Kind)
	assert.Equal(t, KindSchema, pet.Get("allOf").Index(0).Kind)
	assert.Equal(t, KindSchema, pet.Get("properties").Get("name").Kind)
	assert.Equal(t, KindSchema, pet.Get("properties").Get("tags").Get("items").Kind)
	assert.Equal(t, KindSchema, pet.Get("additionalProperties").Kind)
	assert.Equal(t, KindSchema, schemas.Get("Base").Kind)
	assert.Equal(t, KindParameter, root.Get("components").Get("parameters").Get("id").Kind)
}

func TestRefractAsNonObjectSchemaItem(t *testing.T) {
	e := RefractAs(NewInt(2), KindSchema)
	assert.Equal(t, KindGeneric, e.Kind)
}
