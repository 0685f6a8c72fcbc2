package prompt

// SchemaDescription is given to the model when translating questions into SQL
const SchemaDescription = `Database schema for the tutoring system (SQLite):

Table: contents
- id (INTEGER, PRIMARY KEY): Unique identifier for content
- title (TEXT): Title of the educational content
- topic (TEXT): Subject or topic of the content
- grade (TEXT): Grade level (e.g. 'Grade 5', 'High School')
- content (TEXT): Full text content
- file_name (TEXT): Original file name
- chunk_count (INTEGER): Number of chunks created from this content
- created_at (DATETIME): When content was uploaded
- updated_at (DATETIME): When content was last modified

Table: content_chunks
- id (INTEGER, PRIMARY KEY): Unique identifier for chunk
- content_id (INTEGER): References contents.id
- chunk_text (TEXT): Text of the chunk
- chunk_index (INTEGER): Position of the chunk within the content
- created_at (DATETIME): When chunk was created

Table: query_logs
- id (INTEGER, PRIMARY KEY): Unique identifier for query
- user_question (TEXT): Student's original question
- ai_response (TEXT): Tutor's response
- persona (TEXT): Tutor persona used
- created_at (DATETIME): When query was made

Common queries:
- Topics by grade: SELECT DISTINCT topic FROM contents WHERE grade = 'Grade 5'
- Content count: SELECT COUNT(*) FROM contents
- Popular topics: SELECT topic, COUNT(*) AS n FROM contents GROUP BY topic ORDER BY n DESC
- Recent queries: SELECT COUNT(*) FROM query_logs WHERE created_at > datetime('now', '-1 day')`
